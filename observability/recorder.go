package observability

import "sync"

// Level identifies the severity of a recorded entry.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Entry is a single log call captured by a Recorder.
type Entry struct {
	Level   Level
	Message string
	Fields  map[string]interface{}
}

// Recorder is an in-memory Logger. It is safe for concurrent use and is
// mostly useful in tests that assert on what was (or was not) logged.
type Recorder struct {
	mu      *sync.Mutex
	entries *[]Entry
	bound   []Field
}

func NewRecorder() *Recorder {
	return &Recorder{mu: &sync.Mutex{}, entries: &[]Entry{}}
}

func (r *Recorder) Debug(msg string, fields ...Field) { r.add(LevelDebug, msg, fields) }
func (r *Recorder) Info(msg string, fields ...Field)  { r.add(LevelInfo, msg, fields) }
func (r *Recorder) Warn(msg string, fields ...Field)  { r.add(LevelWarn, msg, fields) }
func (r *Recorder) Error(msg string, fields ...Field) { r.add(LevelError, msg, fields) }

func (r *Recorder) With(fields ...Field) Logger {
	bound := append(append([]Field(nil), r.bound...), fields...)
	return &Recorder{mu: r.mu, entries: r.entries, bound: bound}
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), (*r.entries)...)
}

// Count returns the number of entries recorded at the given level.
func (r *Recorder) Count(level Level) int {
	n := 0
	for _, e := range r.Entries() {
		if e.Level == level {
			n++
		}
	}
	return n
}

func (r *Recorder) add(level Level, msg string, fields []Field) {
	kv := make(map[string]interface{}, len(r.bound)+len(fields))
	for _, f := range r.bound {
		kv[f.Key()] = f.Value()
	}
	for _, f := range fields {
		kv[f.Key()] = f.Value()
	}
	r.mu.Lock()
	*r.entries = append(*r.entries, Entry{Level: level, Message: msg, Fields: kv})
	r.mu.Unlock()
}
