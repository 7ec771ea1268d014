package provider

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	go_openai "github.com/sashabaranov/go-openai"

	"github.com/hpkotak/lexbud/internal/sections"
)

// HostedClient streams chat completions from an OpenAI-compatible endpoint.
type HostedClient struct {
	client *go_openai.Client
}

// NewHostedClient creates a client for cfg. httpClient may be nil.
func NewHostedClient(cfg BackendConfig, httpClient *http.Client) (*HostedClient, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if base == "" {
		return nil, errors.New("hosted endpoint cannot be empty")
	}

	config := go_openai.DefaultConfig(cfg.Credential)
	config.BaseURL = base
	if httpClient != nil {
		config.HTTPClient = httpClient
	}
	return &HostedClient{client: go_openai.NewClientWithConfig(config)}, nil
}

// Available checks that the endpoint answers and lists model.
func (h *HostedClient) Available(ctx context.Context, model string) error {
	models, err := h.client.ListModels(ctx)
	if err != nil {
		return errors.Wrap(err, "hosted availability check failed")
	}
	for _, m := range models.Models {
		if m.ID == model {
			return nil
		}
	}
	return errors.Errorf("model %q not found in hosted models list", model)
}

// stream drains one streaming completion into acc.
func (h *HostedClient) stream(ctx context.Context, model string, messages []Message, acc *accumulator) error {
	logger := loggerFrom(ctx)

	req := go_openai.ChatCompletionRequest{
		Model:    model,
		Messages: toOpenAIMessages(messages),
		Stream:   true,
	}

	stream, err := h.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return hostedTransportError("open stream", err)
	}
	defer stream.Close()

	for {
		response, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return hostedTransportError("receive", err)
		}
		if len(response.Choices) == 0 {
			continue
		}
		delta := response.Choices[0].Delta.Content
		if delta != "" {
			logger.Debug().Int("chunk", acc.chunks+1).Int("delta_length", len(delta)).Msg("hosted chunk")
		}
		acc.append(delta)
	}
}

func hostedTransportError(op string, err error) *TransportError {
	te := &TransportError{Backend: Hosted, Op: op, Err: err}

	var apiErr *go_openai.APIError
	var reqErr *go_openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		te.StatusCode = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		te.StatusCode = reqErr.HTTPStatusCode
	}
	return te
}

func toOpenAIMessages(messages []Message) []go_openai.ChatCompletionMessage {
	out := make([]go_openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = go_openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}
	return out
}

// StreamHosted streams a hosted completion for messages into sink and
// post-processes the finished text with layout. It returns nil when the
// stream failed; the failure has already been reported to sink.
func StreamHosted(ctx context.Context, cfg BackendConfig, httpClient *http.Client, model string, messages []Message, layout sections.Layout, sink Sink) *Result {
	client, err := NewHostedClient(cfg, httpClient)
	if err != nil {
		return failBeforeStream(ctx, Hosted, sink, err)
	}

	text, ok := runStream(ctx, Hosted, sink, func(ctx context.Context, acc *accumulator) error {
		return client.stream(ctx, model, messages, acc)
	})
	if !ok {
		return nil
	}

	result := &Result{Backend: Hosted, Text: text}
	if parsed := sections.PostProcess(text, layout); len(parsed) > 0 {
		result.Sections = parsed
	}
	return result
}

// failBeforeStream reports a client construction failure with the same
// contract as a stream failure.
func failBeforeStream(ctx context.Context, backend Backend, sink Sink, err error) *Result {
	_, _ = runStream(ctx, backend, sink, func(context.Context, *accumulator) error {
		return &TransportError{Backend: backend, Op: "configure", Err: err}
	})
	return nil
}
