// Package relayapi provides a typed client for the sheet relay's append
// endpoint, for Go callers standing in for the data-entry front end.
package relayapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"
)

// connectivityMessage is what submitting callers see on any transport-level
// failure, in place of the raw error.
const connectivityMessage = "Network error. Please check your connection and try again."

// Header is the per-session data shared by every entry in a batch.
type Header struct {
	Machine string
	Date    time.Time
	Shift   string
}

// EntryRow is one per-entry record as captured by the form.
type EntryRow struct {
	Block   string
	Part    string
	ThkCm   string
	Nos     string
	Finish  string
	LCm     string
	HCm     string
	Colour  string
	Remarks string
	H       [17]string
}

// Client calls the relay's append endpoint.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a client for the relay at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Append flattens the header into each entry and submits the batch. On
// success it returns the spreadsheet range the rows landed in. Transport
// failures surface as the generic connectivity message; relay failures
// surface with the relay's error string.
func (c *Client) Append(ctx context.Context, header Header, rows []EntryRow) (string, error) {
	body, err := json.Marshal(struct {
		Entries []map[string]string `json:"entries"`
	}{Entries: flatten(header, rows)})
	if err != nil {
		return "", errors.Wrap(err, "encode entries")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/append", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", errors.New(connectivityMessage)
	}
	defer resp.Body.Close()

	var env struct {
		Success      bool   `json:"success"`
		Message      string `json:"message"`
		UpdatedRange string `json:"updatedRange"`
		Error        string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", errors.New(connectivityMessage)
	}

	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = "Failed to append data to Google Sheets"
		}
		return "", errors.New(msg)
	}
	return env.UpdatedRange, nil
}

// flatten merges the session header into each row, producing the
// pre-flattened 29-field entries the relay accepts. The date is rendered as
// ISO yyyy-MM-dd; a zero date becomes the empty string.
func flatten(h Header, rows []EntryRow) []map[string]string {
	date := ""
	if !h.Date.IsZero() {
		date = h.Date.Format("2006-01-02")
	}

	entries := make([]map[string]string, len(rows))
	for i, row := range rows {
		e := map[string]string{
			"machine": h.Machine,
			"date":    date,
			"shift":   h.Shift,
			"block":   row.Block,
			"part":    row.Part,
			"thkCm":   row.ThkCm,
			"nos":     row.Nos,
			"finish":  row.Finish,
			"lCm":     row.LCm,
			"hCm":     row.HCm,
			"colour":  row.Colour,
			"remarks": row.Remarks,
		}
		for j, v := range row.H {
			e["h"+strconv.Itoa(j+1)] = v
		}
		entries[i] = e
	}
	return entries
}
