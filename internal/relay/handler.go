// Package relay is the HTTP boundary: it accepts a batch of pre-flattened
// production log entries, runs the credential → assertion → token → append
// pipeline in strict sequence, and renders every outcome into a uniform
// JSON envelope.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel"

	"prodsheet/server/internal/googleauth"
	"prodsheet/server/internal/middleware"
	"prodsheet/server/internal/observability"
	"prodsheet/server/internal/secrets"
	"prodsheet/server/internal/sheets"
)

var tracer = otel.Tracer("prodsheet/server/internal/relay")

// envelope is the uniform response contract: success or failure, never both.
type envelope struct {
	Success      bool   `json:"success"`
	Message      string `json:"message,omitempty"`
	UpdatedRange string `json:"updatedRange,omitempty"`
	Error        string `json:"error,omitempty"`
}

// HandlerConfig wires the pipeline stages into the handler.
type HandlerConfig struct {
	Store      secrets.Store
	SecretName string
	Assertion  googleauth.AssertionBuilder
	Exchanger  *googleauth.TokenExchanger
	Appender   *sheets.AppendClient

	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Handler serves the append endpoint.
type Handler struct {
	store      secrets.Store
	secretName string
	assertion  googleauth.AssertionBuilder
	exchanger  *googleauth.TokenExchanger
	appender   *sheets.AppendClient
	now        func() time.Time
}

// NewHandler creates the append handler.
func NewHandler(cfg HandlerConfig) *Handler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Handler{
		store:      cfg.Store,
		secretName: cfg.SecretName,
		assertion:  cfg.Assertion,
		exchanger:  cfg.Exchanger,
		appender:   cfg.Appender,
		now:        now,
	}
}

type outcome struct {
	rows         int
	updatedRange string
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, envelope{Success: false, Error: "method not allowed"})
		return
	}

	ctx, span := tracer.Start(r.Context(), "relay.append")
	defer span.End()

	start := time.Now()
	requestID := middleware.GetRequestID(ctx)

	res, appErr := h.process(ctx, r)
	durationMs := time.Since(start).Milliseconds()

	if appErr != nil {
		span.RecordError(appErr)
		log.Printf("[relay] request %s failed (%s): %s", requestID, appErr.Kind, appErr.Message)
		observability.LogAppend(requestID, 0, durationMs, "error", appErr.Message)
		// The original relay answers 500 for every failure category; callers
		// only inspect the envelope.
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Error: appErr.Message})
		return
	}

	log.Printf("[relay] request %s appended %d rows to %s (%dms)", requestID, res.rows, res.updatedRange, durationMs)
	observability.LogAppend(requestID, res.rows, durationMs, "ok", "")
	writeJSON(w, http.StatusOK, envelope{
		Success:      true,
		Message:      fmt.Sprintf("Successfully appended %d rows", res.rows),
		UpdatedRange: res.updatedRange,
	})
}

// process runs the pipeline stages in order; the first failure aborts the
// rest.
func (h *Handler) process(ctx context.Context, r *http.Request) (*outcome, *Error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fail(KindValidation, "failed to read request body", err)
	}

	entries, err := sheets.DecodeEntries(body)
	if err != nil {
		return nil, fail(KindValidation, err.Error(), err)
	}
	if len(entries) == 0 {
		return nil, fail(KindValidation, "No entries provided", nil)
	}

	blob, err := h.store.Get(ctx, h.secretName)
	if err != nil {
		if errors.Is(err, secrets.ErrNotFound) {
			return nil, fail(KindConfig, fmt.Sprintf("%s not configured", h.secretName), err)
		}
		return nil, fail(KindConfig, err.Error(), err)
	}

	key, err := googleauth.ParseServiceAccountKey(blob)
	if err != nil {
		return nil, fail(KindConfig, err.Error(), err)
	}

	assertion, err := h.assertion.Build(key, h.now())
	if err != nil {
		return nil, fail(KindCrypto, err.Error(), err)
	}

	token, err := h.exchanger.Exchange(ctx, assertion)
	if err != nil {
		var terr *googleauth.TokenError
		if errors.As(err, &terr) {
			return nil, fail(KindAuth, "Failed to get access token: "+terr.Description, err)
		}
		return nil, fail(KindNetwork, fmt.Sprintf("Failed to get access token: %v", err), err)
	}

	res, err := h.appender.Append(ctx, token, sheets.Rows(entries))
	if err != nil {
		if errors.Is(err, sheets.ErrNoRows) {
			return nil, fail(KindValidation, "No entries provided", err)
		}
		var aerr *sheets.APIError
		if errors.As(err, &aerr) {
			return nil, fail(KindSheets, aerr.Message, err)
		}
		return nil, fail(KindNetwork, err.Error(), err)
	}

	return &outcome{rows: len(entries), updatedRange: res.UpdatedRange}, nil
}

func writeJSON(w http.ResponseWriter, status int, v envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[relay] failed to encode response: %v", err)
	}
}
