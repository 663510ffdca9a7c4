// Package dispatch executes the outbound HTTP call a case describes and
// records the observed outcome.
//
// This is the heart of the application. Everything else is CRUD glue; the
// dispatcher is where a stored definition turns into a live request:
//
//	load case → build request → execute → capture status line + body →
//	persist onto the record → re-read and return
//
// FAILURE SEMANTICS:
// The dispatcher distinguishes three very different "failures":
//   - An unexecutable verb (anything but GET/POST) → MethodNotSupported.
//     No request is sent and the record is untouched.
//   - A transport failure (DNS, connect, TLS, timeout) → DispatchFailed
//     wrapping the cause. The record is untouched.
//   - An HTTP error status (4xx/5xx) from the target is NOT a failure —
//     receiving a 500 is a perfectly valid test outcome, and it is captured
//     exactly like a 200.
package dispatch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/case-runner/internal/apperror"
	"github.com/sakif/case-runner/internal/model"
	"github.com/sakif/case-runner/internal/repository"
)

// Dispatcher executes cases. The HTTP client is injected so tests can point
// it at an httptest server; the zero-value client has no timeout, which is
// intentional — a dispatch waits as long as the target takes.
type Dispatcher struct {
	cases  repository.CaseRepository
	client *http.Client
	logger *slog.Logger
}

// New creates a Dispatcher. Passing client=nil uses a fresh default client.
func New(cases repository.CaseRepository, client *http.Client, logger *slog.Logger) *Dispatcher {
	if client == nil {
		client = &http.Client{}
	}
	return &Dispatcher{
		cases:  cases,
		client: client,
		logger: logger,
	}
}

// Dispatch executes the case identified by id and returns the updated
// record with the freshly captured response fields.
//
// The target URL is host and uri concatenated verbatim — no normalization,
// no scheme validation. The stored method is uppercased; an empty method
// defaults to GET. Only GET and POST are executable; POST sends the stored
// request_body as the raw payload.
//
// Note the outbound request deliberately does not carry the caller's
// context: cancelling the inbound HTTP request must not cancel a dispatch
// in flight, and no caller-supplied deadline applies.
//
// Concurrent dispatches of the same id race on the response columns with
// last-writer-wins; the record never mixes fields from two outcomes because
// both columns are written in a single statement.
func (d *Dispatcher) Dispatch(ctx context.Context, id string) (*model.Case, error) {
	c, err := d.cases.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	url := c.Host + c.URI

	method := strings.ToUpper(strings.TrimSpace(c.Method))
	if method == "" {
		method = http.MethodGet
	}

	var req *http.Request
	switch method {
	case http.MethodGet:
		req, err = http.NewRequest(http.MethodGet, url, nil)
	case http.MethodPost:
		req, err = http.NewRequest(http.MethodPost, url, strings.NewReader(c.RequestBody))
	default:
		return nil, apperror.MethodNotSupported(method)
	}
	if err != nil {
		return nil, apperror.DispatchFailed(err)
	}

	d.logger.Info("dispatching case",
		slog.String("id", c.ID),
		slog.String("method", method),
		slog.String("url", url),
	)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, apperror.DispatchFailed(err)
	}
	defer resp.Body.Close()

	// The status line text ("200 OK", "404 Not Found"), not just the code.
	responseCode := resp.Status

	// A body-read failure degrades to an empty body rather than failing the
	// whole dispatch — the status line was already observed.
	var responseBody string
	if body, err := io.ReadAll(resp.Body); err == nil {
		responseBody = string(body)
	} else {
		d.logger.Warn("reading response body failed",
			slog.String("id", c.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := d.cases.UpdateResponse(ctx, id, responseCode, responseBody); err != nil {
		return nil, err
	}

	d.logger.Info("case dispatched",
		slog.String("id", c.ID),
		slog.String("status", responseCode),
		slog.Int("bodyBytes", len(responseBody)),
	)

	return d.cases.GetByID(ctx, id)
}
