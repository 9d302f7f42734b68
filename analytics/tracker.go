// Package analytics defines the product and engineering tracking sinks used
// by the screens and the data layer.
package analytics

import (
	"io"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Params are the key/value pairs attached to a tracked event.
type Params map[string]string

// Tracker records user facing screens and events.
type Tracker interface {
	TrackScreen(screen string, params Params)
	TrackEvent(event string, params Params)
}

// EngineeringTracker records data layer milestones and failures.
type EngineeringTracker interface {
	TrackInfo(event string, params Params)
	TrackError(event string, err error, params Params)
}

// LogTracker writes every tracked item to a structured logger tagged with a
// per process session id. It satisfies both Tracker and EngineeringTracker.
type LogTracker struct {
	logger    *log.Logger
	sessionID string
}

var (
	_ Tracker            = (*LogTracker)(nil)
	_ EngineeringTracker = (*LogTracker)(nil)
)

// NewLogTracker returns a LogTracker with a fresh session id. A nil logger
// discards everything.
func NewLogTracker(logger *log.Logger) *LogTracker {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	sessionID := uuid.NewString()
	return &LogTracker{
		logger:    logger.WithPrefix("analytics").With("session", sessionID),
		sessionID: sessionID,
	}
}

// SessionID identifies the process in every line written.
func (t *LogTracker) SessionID() string {
	return t.sessionID
}

func (t *LogTracker) TrackScreen(screen string, params Params) {
	t.logger.Info("screen_view", append([]any{"screen", screen}, keyvals(params)...)...)
}

func (t *LogTracker) TrackEvent(event string, params Params) {
	t.logger.Info(event, keyvals(params)...)
}

func (t *LogTracker) TrackInfo(event string, params Params) {
	t.logger.Debug(event, keyvals(params)...)
}

func (t *LogTracker) TrackError(event string, err error, params Params) {
	kv := keyvals(params)
	if err != nil {
		kv = append(kv, "err", err)
	}
	t.logger.Error(event, kv...)
}

// keyvals flattens params in key order so output is stable.
func keyvals(params Params) []any {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]any, 0, len(params)*2)
	for _, k := range keys {
		out = append(out, k, params[k])
	}
	return out
}
