// Package sheets maps production log entries onto spreadsheet rows and
// appends them through the Google Sheets values API.
package sheets

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// NumColumns is the fixed width of a sheet row (columns A through AC).
const NumColumns = 29

// Columns is the spreadsheet column layout: three session fields, nine
// per-entry fields, then the seventeen abrasive-head fields. The order is
// load-bearing — it must only change together with the spreadsheet schema.
var Columns = [NumColumns]string{
	"machine", "date", "shift",
	"block", "part", "thkCm", "nos", "finish", "lCm", "hCm", "colour", "remarks",
	"h1", "h2", "h3", "h4", "h5", "h6", "h7", "h8", "h9",
	"h10", "h11", "h12", "h13", "h14", "h15", "h16", "h17",
}

var columnSet = func() map[string]struct{} {
	s := make(map[string]struct{}, NumColumns)
	for _, c := range Columns {
		s[c] = struct{}{}
	}
	return s
}()

// Entry is one pre-flattened submission record: every one of the 29 named
// fields, all strings. An absent value is the empty string, never omitted.
type Entry map[string]string

// Row returns the entry's cell values in column order. Always NumColumns
// elements.
func (e Entry) Row() []string {
	row := make([]string, NumColumns)
	for i, col := range Columns {
		row[i] = e[col]
	}
	return row
}

// DecodeEntries parses a request body of the form {"entries":[...]} into
// entries, failing closed: unknown, missing, duplicate, or non-string fields
// are all rejected.
func DecodeEntries(data []byte) ([]Entry, error) {
	d := jx.DecodeBytes(data)
	if d.Next() != jx.Object {
		return nil, errors.New("request body must be a JSON object")
	}

	var entries []Entry
	sawEntries := false
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "entries" {
			return errors.Errorf("unexpected field %q", key)
		}
		sawEntries = true
		if d.Next() != jx.Array {
			return errors.New("entries must be an array")
		}
		return d.Arr(func(d *jx.Decoder) error {
			e, err := decodeEntry(d, len(entries))
			if err != nil {
				return err
			}
			entries = append(entries, e)
			return nil
		})
	}); err != nil {
		return nil, err
	}

	if !sawEntries {
		return nil, errors.New(`missing "entries" field`)
	}
	return entries, nil
}

func decodeEntry(d *jx.Decoder, index int) (Entry, error) {
	if d.Next() != jx.Object {
		return nil, errors.Errorf("entry %d: expected an object", index)
	}

	e := make(Entry, NumColumns)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if _, ok := columnSet[key]; !ok {
			return errors.Errorf("entry %d: unknown field %q", index, key)
		}
		if _, dup := e[key]; dup {
			return errors.Errorf("entry %d: duplicate field %q", index, key)
		}
		if d.Next() != jx.String {
			return errors.Errorf("entry %d: field %q must be a string", index, key)
		}
		v, err := d.Str()
		if err != nil {
			return err
		}
		e[key] = v
		return nil
	}); err != nil {
		return nil, err
	}

	if len(e) != NumColumns {
		var missing []string
		for _, col := range Columns {
			if _, ok := e[col]; !ok {
				missing = append(missing, col)
			}
		}
		return nil, errors.Errorf("entry %d: missing field(s): %s", index, strings.Join(missing, ", "))
	}
	return e, nil
}
