package analytics

import "sync"

type Kind string

const (
	KindScreen Kind = "screen"
	KindEvent  Kind = "event"
	KindInfo   Kind = "info"
	KindError  Kind = "error"
)

// Entry is one tracked item.
type Entry struct {
	Kind   Kind
	Name   string
	Params Params
	Err    error
}

// Recorder keeps every tracked item in memory.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

var (
	_ Tracker            = (*Recorder)(nil)
	_ EngineeringTracker = (*Recorder)(nil)
)

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) TrackScreen(screen string, params Params) {
	r.add(Entry{Kind: KindScreen, Name: screen, Params: params})
}

func (r *Recorder) TrackEvent(event string, params Params) {
	r.add(Entry{Kind: KindEvent, Name: event, Params: params})
}

func (r *Recorder) TrackInfo(event string, params Params) {
	r.add(Entry{Kind: KindInfo, Name: event, Params: params})
}

func (r *Recorder) TrackError(event string, err error, params Params) {
	r.add(Entry{Kind: KindError, Name: event, Params: params, Err: err})
}

func (r *Recorder) add(e Entry) {
	if e.Params != nil {
		cp := make(Params, len(e.Params))
		for k, v := range e.Params {
			cp[k] = v
		}
		e.Params = cp
	}
	r.mu.Lock()
	r.entries = append(r.entries, e)
	r.mu.Unlock()
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Names returns the names of the recorded items, in order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Name)
	}
	return out
}

// Find returns the last entry named name.
func (r *Recorder) Find(name string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].Name == name {
			return r.entries[i], true
		}
	}
	return Entry{}, false
}

// Reset drops everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.entries = nil
	r.mu.Unlock()
}

// Nop discards everything.
type Nop struct{}

func (Nop) TrackScreen(string, Params)       {}
func (Nop) TrackEvent(string, Params)        {}
func (Nop) TrackInfo(string, Params)         {}
func (Nop) TrackError(string, error, Params) {}
