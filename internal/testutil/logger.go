// Package testutil holds helpers shared by the player service tests.
package testutil

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// NopLogger returns a logger that discards all output
func NopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// LogBuffer collects the JSON lines written by a BufferLogger.
// It is safe for concurrent use, so handlers running on server goroutines may log into it.
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// BufferLogger returns a debug-level JSON logger writing into the returned buffer
func BufferLogger() (*slog.Logger, *LogBuffer) {
	buf := &LogBuffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// Bytes returns a copy of everything logged so far
func (b *LogBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Clone(b.buf.Bytes())
}

func (b *LogBuffer) String() string {
	return string(b.Bytes())
}

// Entries decodes every logged line
func (b *LogBuffer) Entries(t testing.TB) []map[string]any {
	t.Helper()

	var entries []map[string]any
	scanner := bufio.NewScanner(bytes.NewReader(b.Bytes()))
	for scanner.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}
	require.NoError(t, scanner.Err())
	return entries
}

// Messages returns the msg field of every logged line in order
func (b *LogBuffer) Messages(t testing.TB) []string {
	t.Helper()

	var msgs []string
	for _, entry := range b.Entries(t) {
		msg, _ := entry["msg"].(string)
		msgs = append(msgs, msg)
	}
	return msgs
}
