// Package telemetry provides the concrete Logger implementations the
// engine package's Logger interface is satisfied by. It follows the
// registry-of-creators pattern the teacher's hemi_logger.go uses:
// implementations register themselves under a short sign, and callers
// build one by name plus a config value.
package telemetry

import (
	"fmt"
	"sync"
)

// Config configures a registered logger. Fields beyond Sign are
// interpreted by the creator the Sign selects.
type Config struct {
	Sign  string
	Level string
}

// Creator builds a Logger from a Config.
type Creator func(cfg Config) (Logger, error)

// Logger matches engine.Logger; duplicated here (rather than imported)
// so this package has no dependency on engine, mirroring how the
// teacher's logger registry doesn't import the http server package it
// serves.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Close() error
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Creator{}
)

// Register adds a creator under sign. It panics on a duplicate
// registration, matching RegisterLogger's guard in the teacher codebase.
func Register(sign string, creator Creator) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[sign]; exists {
		panic(fmt.Sprintf("telemetry: logger %q already registered", sign))
	}
	registry[sign] = creator
}

// New builds a Logger using the creator registered under cfg.Sign.
func New(cfg Config) (Logger, error) {
	registryMu.RLock()
	creator, ok := registry[cfg.Sign]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("telemetry: no logger registered under sign %q", cfg.Sign)
	}
	return creator(cfg)
}

func init() {
	Register("noop", func(cfg Config) (Logger, error) { return noopLogger{}, nil })
	Register("zap", newZapLogger)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Infof(string, ...any)  {}
func (noopLogger) Warnf(string, ...any)  {}
func (noopLogger) Errorf(string, ...any) {}
func (noopLogger) Close() error          { return nil }
