package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("prodsheet/server/internal/sheets")
	meter  = otel.Meter("prodsheet/server/internal/sheets")
)

// ErrNoRows is returned when an append is attempted with an empty batch.
var ErrNoRows = errors.New("no entries provided")

// APIError is a rejection from the Sheets values API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Config identifies the append target. SpreadsheetID and SheetName are
// injected rather than embedded so tests and multi-target deployments work
// without code changes.
type Config struct {
	BaseURL       string
	SpreadsheetID string
	SheetName     string
}

// AppendResult reports a successful append.
type AppendResult struct {
	UpdatedRange string
}

// AppendClient appends rows to one spreadsheet via the values:append
// endpoint.
type AppendClient struct {
	cfg          Config
	client       *http.Client
	rowsAppended metric.Int64Counter
}

// NewAppendClient creates a client for the configured spreadsheet.
func NewAppendClient(cfg Config) *AppendClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://sheets.googleapis.com/v4"
	}
	rowsAppended, _ := meter.Int64Counter("sheets.rows_appended")
	return &AppendClient{
		cfg:          cfg,
		client:       &http.Client{Timeout: 10 * time.Second},
		rowsAppended: rowsAppended,
	}
}

// Range returns the A1 range the client appends to.
func (c *AppendClient) Range() string {
	return c.cfg.SheetName + "!A:AC"
}

// Append writes the rows to the spreadsheet in a single all-or-nothing batch.
// USER_ENTERED input with INSERT_ROWS, matching manual data entry.
func (c *AppendClient) Append(ctx context.Context, token string, rows [][]string) (*AppendResult, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	ctx, span := tracer.Start(ctx, "sheets.values_append", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	body, err := json.Marshal(struct {
		Values [][]string `json:"values"`
	}{Values: rows})
	if err != nil {
		return nil, errors.Wrap(err, "encode append request")
	}

	endpoint := fmt.Sprintf("%s/spreadsheets/%s/values/%s:append?valueInputOption=USER_ENTERED&insertDataOption=INSERT_ROWS",
		c.cfg.BaseURL, url.PathEscape(c.cfg.SpreadsheetID), url.PathEscape(c.Range()))

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create append request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "append request")
	}
	defer resp.Body.Close()

	var out struct {
		Updates struct {
			UpdatedRange string `json:"updatedRange"`
		} `json:"updates"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrap(err, "decode append response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := out.Error.Message
		if msg == "" {
			msg = "Failed to append data to Google Sheets"
		}
		aerr := &APIError{Status: resp.StatusCode, Message: msg}
		span.RecordError(aerr)
		return nil, aerr
	}

	c.rowsAppended.Add(ctx, int64(len(rows)))
	return &AppendResult{UpdatedRange: out.Updates.UpdatedRange}, nil
}
