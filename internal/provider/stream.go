package provider

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// loggerFrom returns the request logger carried by ctx, or the global logger.
func loggerFrom(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}

// accumulator owns the response text of one in-flight request. Only the
// read loop that created it appends; the sink only sees string copies.
type accumulator struct {
	buf    strings.Builder
	sink   Sink
	chunks int
}

func newAccumulator(sink Sink) *accumulator {
	if sink == nil {
		sink = Discard
	}
	return &accumulator{sink: sink}
}

// append adds a fragment and pushes the in-flight snapshot.
// Empty fragments are ignored.
func (a *accumulator) append(fragment string) {
	if fragment == "" {
		return
	}
	a.buf.WriteString(fragment)
	a.chunks++
	a.sink.Update(a.buf.String() + Cursor)
}

// finish freezes the text and pushes the final snapshot.
func (a *accumulator) finish() string {
	text := a.buf.String()
	a.sink.Update(text)
	return text
}

// streamFunc drains one backend stream into acc.
type streamFunc func(ctx context.Context, acc *accumulator) error

// runStream is the failure boundary shared by both clients: a stream error
// leaves the partial text visible, reports the error to the sink and yields
// no text.
func runStream(ctx context.Context, backend Backend, sink Sink, stream streamFunc) (string, bool) {
	logger := loggerFrom(ctx)
	acc := newAccumulator(sink)

	if err := stream(ctx, acc); err != nil {
		logger.Error().Err(err).Str("backend", backend.String()).Int("chunks", acc.chunks).Msg("stream aborted")
		if acc.chunks > 0 {
			acc.finish()
		}
		acc.sink.Fail("API Error: " + err.Error())
		return "", false
	}

	text := acc.finish()
	logger.Debug().Str("backend", backend.String()).Int("chunks", acc.chunks).Int("length", len(text)).Msg("stream complete")
	return text, true
}
