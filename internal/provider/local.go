package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/pkg/errors"
)

const (
	localErrorBodyLimit = 512
	localLineBufferSize = 64 << 10
	localLineLimit      = 1 << 20 // 1 MiB
)

// LocalClient streams NDJSON chat responses from a locally reachable endpoint.
type LocalClient struct {
	client   *http.Client
	endpoint string
}

// localChunk is one line of the local stream.
type localChunk struct {
	Message *struct {
		Content string `json:"content"`
	} `json:"message"`
	Done  json.RawMessage `json:"done"`
	Error string          `json:"error"`
}

// localRequest is the chat request body. It carries only the fields the
// local endpoint needs.
type localRequest struct {
	Model    string        `json:"model"`
	Messages []api.Message `json:"messages"`
	Stream   bool          `json:"stream"`
}

// truthy reports whether a raw JSON value counts as set: false, null, zero,
// and empty strings, arrays and objects do not.
func truthy(raw json.RawMessage) bool {
	switch v := strings.TrimSpace(string(raw)); v {
	case "", "null", "false", `""`, "[]", "{}":
		return false
	case "true":
		return true
	default:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f != 0
		}
		return true
	}
}

// NewLocalClient creates a client posting to cfg.Endpoint. httpClient may be nil.
func NewLocalClient(cfg BackendConfig, httpClient *http.Client) (*LocalClient, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("local endpoint cannot be empty")
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, errors.Wrap(err, "parsing local endpoint URL")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &LocalClient{client: httpClient, endpoint: endpoint}, nil
}

// Available checks if the local server is reachable and the model exists.
// The server root is derived from the chat endpoint.
func (l *LocalClient) Available(ctx context.Context, model string) error {
	base, err := url.Parse(l.endpoint)
	if err != nil {
		return errors.Wrap(err, "parsing local endpoint URL")
	}
	base.Path, base.RawQuery = "", ""

	models, err := api.NewClient(base, l.client).List(ctx)
	if err != nil {
		return errors.Wrap(err, "cannot reach local model server")
	}
	for _, m := range models.Models {
		if m.Name == model || m.Name == model+":latest" {
			return nil
		}
	}
	return errors.Errorf("model %q not found on local model server", model)
}

// stream posts one chat request and drains its NDJSON body into acc.
func (l *LocalClient) stream(ctx context.Context, model string, messages []Message, acc *accumulator) error {
	logger := loggerFrom(ctx)

	apiMessages := make([]api.Message, len(messages))
	for i, m := range messages {
		apiMessages[i] = api.Message{Role: string(m.Role), Content: m.Content}
	}
	body, err := json.Marshal(&localRequest{
		Model:    model,
		Messages: apiMessages,
		Stream:   true,
	})
	if err != nil {
		return &TransportError{Backend: Local, Op: "encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Backend: Local, Op: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson")

	resp, err := l.client.Do(req)
	if err != nil {
		return &TransportError{Backend: Local, Op: "post", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{
			Backend:    Local,
			Op:         "post",
			StatusCode: resp.StatusCode,
			Err:        errors.New(readErrorBody(resp.Body)),
		}
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, localLineBufferSize), localLineLimit)

	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var chunk localChunk
		if err := json.Unmarshal(raw, &chunk); err != nil {
			logger.Debug().Err(&MalformedChunkError{Line: line, Err: err}).Msg("skipping local chunk")
			continue
		}
		if chunk.Error != "" {
			return &TransportError{Backend: Local, Op: "stream", Err: errors.New(chunk.Error)}
		}
		if truthy(chunk.Done) {
			logger.Debug().Int("line", line).Msg("local stream done")
			return nil
		}
		if chunk.Message != nil {
			acc.append(chunk.Message.Content)
		}
	}
	if err := scanner.Err(); err != nil {
		return &TransportError{Backend: Local, Op: "read", Err: err}
	}
	return nil
}

// StreamLocal streams a local chat response for messages into sink. The
// result never carries sections. It returns nil when the stream failed; the
// failure has already been reported to sink.
func StreamLocal(ctx context.Context, cfg BackendConfig, httpClient *http.Client, model string, messages []Message, sink Sink) *Result {
	client, err := NewLocalClient(cfg, httpClient)
	if err != nil {
		return failBeforeStream(ctx, Local, sink, err)
	}

	text, ok := runStream(ctx, Local, sink, func(ctx context.Context, acc *accumulator) error {
		return client.stream(ctx, model, messages, acc)
	})
	if !ok {
		return nil
	}
	return &Result{Backend: Local, Text: text}
}

func readErrorBody(r io.Reader) string {
	body, _ := io.ReadAll(io.LimitReader(r, localErrorBodyLimit))
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "unknown error"
	}
	return text
}
