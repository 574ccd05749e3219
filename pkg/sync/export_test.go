package sync

import "github.com/rs/zerolog"

// SetLogger replaces the engine logger so tests can inspect events.
func (e *Engine) SetLogger(logger zerolog.Logger) {
	e.logger = logger
}
