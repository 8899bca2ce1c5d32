package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Record is one captured log entry.
type Record struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogCapture is an slog.Handler that keeps records in memory so tests can
// assert on what a component logged. Safe for concurrent use.
type LogCapture struct {
	mu      sync.Mutex
	attrs   []slog.Attr
	records *[]Record
	recMu   *sync.Mutex
}

// NewLogger returns a logger backed by a fresh capture.
func NewLogger() (*slog.Logger, *LogCapture) {
	var records []Record
	c := &LogCapture{records: &records, recMu: &sync.Mutex{}}
	return slog.New(c), c
}

func (c *LogCapture) Enabled(context.Context, slog.Level) bool { return true }

func (c *LogCapture) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, r.NumAttrs()+len(c.attrs))
	for _, a := range c.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	c.recMu.Lock()
	defer c.recMu.Unlock()
	*c.records = append(*c.records, Record{Level: r.Level, Message: r.Message, Attrs: attrs})
	return nil
}

// WithAttrs keeps derived handlers writing into the same record store so a
// component's logger.With(...) output stays visible to the test.
func (c *LogCapture) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogCapture{
		attrs:   append(append([]slog.Attr{}, c.attrs...), attrs...),
		records: c.records,
		recMu:   c.recMu,
	}
}

func (c *LogCapture) WithGroup(string) slog.Handler { return c }

// Records returns a copy of everything captured so far.
func (c *LogCapture) Records() []Record {
	c.recMu.Lock()
	defer c.recMu.Unlock()
	out := make([]Record, len(*c.records))
	copy(out, *c.records)
	return out
}

// ContainsMessage reports whether any captured record's message contains
// the given substring.
func (c *LogCapture) ContainsMessage(message string) bool {
	for _, r := range c.Records() {
		if strings.Contains(r.Message, message) {
			return true
		}
	}
	return false
}

// AttrValue returns the first captured value for a key, nil when absent.
func (c *LogCapture) AttrValue(key string) any {
	for _, r := range c.Records() {
		if v, ok := r.Attrs[key]; ok {
			return v
		}
	}
	return nil
}
