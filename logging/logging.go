package logging

import (
	"go.uber.org/zap"
)

// Client exposes the log levels available to handlers through console.
type Client interface {
	Info(message string)
	Warn(message string)
	Error(message string)
	Debug(message string)
	Trace(message string)
}

// Config controls how a Client emits entries.
type Config struct {
	// Logger receives every entry. Defaults to zap.NewNop().
	Logger *zap.Logger

	// Handler names the handler source; it is attached to every entry.
	Handler string
}

type client struct {
	log *zap.Logger
}

// New creates a Client that writes handler output to a zap logger.
func New(cfg Config) (Client, error) {
	l := cfg.Logger
	if l == nil {
		l = zap.NewNop()
	}

	l = l.Named("console")
	if cfg.Handler != "" {
		l = l.With(zap.String("handler", cfg.Handler))
	}

	return &client{log: l}, nil
}

func (c *client) Info(message string)  { c.log.Info(message) }
func (c *client) Warn(message string)  { c.log.Warn(message) }
func (c *client) Error(message string) { c.log.Error(message) }
func (c *client) Debug(message string) { c.log.Debug(message) }

// Trace has no zap level of its own; it is logged at debug level and tagged.
func (c *client) Trace(message string) { c.log.Debug(message, zap.Bool("trace", true)) }
