package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewDefaults(t *testing.T) {
	c, err := New(Config{})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	// The nop logger must accept every level
	c.Info("msg")
	c.Warn("msg")
	c.Error("msg")
	c.Debug("msg")
	c.Trace("msg")
}

func TestClientLevels(t *testing.T) {
	tt := []struct {
		name      string
		call      func(Client)
		wantLevel zapcore.Level
		wantTrace bool
	}{
		{"Info", func(c Client) { c.Info("msg") }, zapcore.InfoLevel, false},
		{"Warn", func(c Client) { c.Warn("msg") }, zapcore.WarnLevel, false},
		{"Error", func(c Client) { c.Error("msg") }, zapcore.ErrorLevel, false},
		{"Debug", func(c Client) { c.Debug("msg") }, zapcore.DebugLevel, false},
		{"Trace", func(c Client) { c.Trace("msg") }, zapcore.DebugLevel, true},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			c, err := New(Config{Logger: zap.New(core), Handler: "handler.js"})
			if err != nil {
				t.Fatalf("New returned error: %v", err)
			}

			tc.call(c)

			entries := logs.All()
			if len(entries) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(entries))
			}
			e := entries[0]
			if e.Level != tc.wantLevel {
				t.Fatalf("expected level %v, got %v", tc.wantLevel, e.Level)
			}
			if e.Message != "msg" || e.LoggerName != "console" {
				t.Fatalf("unexpected entry %q from %q", e.Message, e.LoggerName)
			}
			fields := e.ContextMap()
			if fields["handler"] != "handler.js" {
				t.Fatalf("expected handler field, got %v", fields)
			}
			if _, ok := fields["trace"]; ok != tc.wantTrace {
				t.Fatalf("unexpected trace tagging: %v", fields)
			}
		})
	}
}
