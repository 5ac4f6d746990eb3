package sheets

import "time"

// Header is the per-session data shared by every entry in a batch.
type Header struct {
	Machine string    `json:"machine"`
	Date    time.Time `json:"date"`
	Shift   string    `json:"shift"`
}

// Item is one per-entry record before the session header is merged in.
type Item struct {
	Block   string `json:"block"`
	Part    string `json:"part"`
	ThkCm   string `json:"thkCm"`
	Nos     string `json:"nos"`
	Finish  string `json:"finish"`
	LCm     string `json:"lCm"`
	HCm     string `json:"hCm"`
	Colour  string `json:"colour"`
	Remarks string `json:"remarks"`
	H1      string `json:"h1"`
	H2      string `json:"h2"`
	H3      string `json:"h3"`
	H4      string `json:"h4"`
	H5      string `json:"h5"`
	H6      string `json:"h6"`
	H7      string `json:"h7"`
	H8      string `json:"h8"`
	H9      string `json:"h9"`
	H10     string `json:"h10"`
	H11     string `json:"h11"`
	H12     string `json:"h12"`
	H13     string `json:"h13"`
	H14     string `json:"h14"`
	H15     string `json:"h15"`
	H16     string `json:"h16"`
	H17     string `json:"h17"`
}

// Rows maps a batch of entries to spreadsheet rows, one row per entry, each
// exactly NumColumns wide. Pure function.
func Rows(entries []Entry) [][]string {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = e.Row()
	}
	return rows
}

// Flatten merges the session header into each item, producing the
// pre-flattened entries the relay endpoint accepts. The date is rendered as
// ISO yyyy-MM-dd; a zero date becomes the empty string.
func Flatten(h Header, items []Item) []Entry {
	date := ""
	if !h.Date.IsZero() {
		date = h.Date.Format("2006-01-02")
	}

	entries := make([]Entry, len(items))
	for i, it := range items {
		entries[i] = Entry{
			"machine": h.Machine,
			"date":    date,
			"shift":   h.Shift,
			"block":   it.Block,
			"part":    it.Part,
			"thkCm":   it.ThkCm,
			"nos":     it.Nos,
			"finish":  it.Finish,
			"lCm":     it.LCm,
			"hCm":     it.HCm,
			"colour":  it.Colour,
			"remarks": it.Remarks,
			"h1":      it.H1,
			"h2":      it.H2,
			"h3":      it.H3,
			"h4":      it.H4,
			"h5":      it.H5,
			"h6":      it.H6,
			"h7":      it.H7,
			"h8":      it.H8,
			"h9":      it.H9,
			"h10":     it.H10,
			"h11":     it.H11,
			"h12":     it.H12,
			"h13":     it.H13,
			"h14":     it.H14,
			"h15":     it.H15,
			"h16":     it.H16,
			"h17":     it.H17,
		}
	}
	return entries
}
