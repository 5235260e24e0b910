package scpi

import (
	"errors"
	"time"

	"github.com/arloliu/go-bench/logger"
	"github.com/arloliu/go-bench/transport"
)

// openConfig collects the configuration applied when opening an Instrument.
type openConfig struct {
	deviceType string
	timeout    time.Duration
	kwargs     transport.Options
	logger     logger.Logger
}

// Option represents a functional option for opening an Instrument.
type Option interface {
	apply(*openConfig) error
}

type optionFunc func(*openConfig) error

func (f optionFunc) apply(cfg *openConfig) error { return f(cfg) }

// WithDeviceType sets the concrete device type name reported by the session.
// Driver packages embedding Instrument set their own type name here so that
// session equality distinguishes them from the generic instrument.
//
// The default is "Instrument".
func WithDeviceType(name string) Option {
	return optionFunc(func(cfg *openConfig) error {
		if name == "" {
			return errors.New("scpi: device type name is empty")
		}
		cfg.deviceType = name

		return nil
	})
}

// WithTimeout sets the response timeout, overriding any "timeout" entry in
// the constructor options.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(cfg *openConfig) error {
		if d <= 0 {
			return errors.New("scpi: timeout must be positive")
		}
		cfg.timeout = d

		return nil
	})
}

// WithKwargs supplies the constructor options map from a device descriptor.
// Keys understood by the transport layer are documented on
// transport.Options; a "timeout" entry (milliseconds) also sets the session
// timeout.
func WithKwargs(kwargs map[string]any) Option {
	return optionFunc(func(cfg *openConfig) error {
		cfg.kwargs = transport.Options(kwargs)
		return nil
	})
}

// WithLogger sets the logger for session events.
//
// The default logger is the global logger instance.
func WithLogger(l logger.Logger) Option {
	return optionFunc(func(cfg *openConfig) error {
		if l == nil {
			return errors.New("scpi: logger is nil")
		}
		cfg.logger = l

		return nil
	})
}
