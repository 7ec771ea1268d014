package provider

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Dispatcher routes requests to the backend selected by their model.
type Dispatcher struct {
	Selector Selector
	// DefaultModel is used when a request names no model.
	DefaultModel string
	// HTTPClient is shared by both backends. It should have no overall
	// timeout; Timeout bounds each dispatch instead.
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Dispatch resolves the request's backend and streams the response into
// sink. The only error returned is *UnsupportedModelError, before any
// network call. A nil result with a nil error means the stream failed and
// sink was notified.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request, sink Sink) (*Result, error) {
	model := resolveModel(req.Model, d.DefaultModel)

	cfg, err := d.Selector.Resolve(model)
	if err != nil {
		return nil, err
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	logger := loggerFrom(ctx).With().
		Str("request_id", id).
		Str("model", model).
		Str("backend", cfg.Backend.String()).
		Logger()
	ctx = logger.WithContext(ctx)

	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	logger.Debug().Int("messages", len(req.Messages)).Msg("dispatching")

	switch cfg.Backend {
	case Hosted:
		return StreamHosted(ctx, cfg, d.HTTPClient, model, req.Messages, req.Layout, sink), nil
	default:
		return StreamLocal(ctx, cfg, d.HTTPClient, model, req.Messages, sink), nil
	}
}

// Available checks the backend serving model.
func (d *Dispatcher) Available(ctx context.Context, model string) error {
	model = resolveModel(model, d.DefaultModel)

	cfg, err := d.Selector.Resolve(model)
	if err != nil {
		return err
	}

	switch cfg.Backend {
	case Hosted:
		client, err := NewHostedClient(cfg, d.HTTPClient)
		if err != nil {
			return err
		}
		return client.Available(ctx, model)
	default:
		client, err := NewLocalClient(cfg, d.HTTPClient)
		if err != nil {
			return err
		}
		return client.Available(ctx, model)
	}
}

// resolveModel falls back to defaultModel when the request names none.
func resolveModel(requestModel, defaultModel string) string {
	if m := strings.TrimSpace(requestModel); m != "" {
		return m
	}
	return defaultModel
}
