package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"
)

// LogEntry is a single logged event.
type LogEntry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionID       string `json:"session_id,omitempty"`

	RunCommand *RunCommand `json:"run_command,omitempty"`
	SessionEnd *SessionEnd `json:"session_end,omitempty"`
}

// RunCommand records one executed top-level line.
type RunCommand struct {
	Line       string  `json:"line"`
	Program    string  `json:"program,omitempty"`
	Status     string  `json:"status"`
	Error      string  `json:"error,omitempty"`
	Cwd        string  `json:"cwd"`
	DurationMs float64 `json:"duration_ms"`
}

// SessionEnd records the end of an interactive session.
type SessionEnd struct {
	Lines int `json:"lines"`
}

// LogRecorder is a callback that stores events in an external datastore.
type LogRecorder func(le *LogEntry) error

// Logger captures events from shell sessions.
type Logger struct {
	Record LogRecorder
	now    func() time.Time
}

// NewJsonLinesLogRecorder creates a Logger that exports logs in newline
// delimited JSON object format.
func NewJsonLinesLogRecorder(w io.Writer) *Logger {
	var mu sync.Mutex
	return &Logger{
		Record: func(le *LogEntry) error {
			entry, err := json.Marshal(le)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			_, err = fmt.Fprintln(w, string(entry))
			return err
		},
		now: time.Now,
	}
}

// NewNopLogger creates a Logger that discards everything.
func NewNopLogger() *Logger {
	return &Logger{
		Record: func(*LogEntry) error { return nil },
		now:    time.Now,
	}
}

func (l *Logger) record(sessionID string, le *LogEntry) error {
	now := time.Now
	if l.now != nil {
		now = l.now
	}
	le.TimestampMicros = now().UnixNano() / int64(time.Microsecond)
	le.SessionID = sessionID

	return l.Record(le)
}

// NewSession creates a logger with attached session ID.
func (l *Logger) NewSession() *SessionLogger {
	return &SessionLogger{Logger: l, sessionID: fmt.Sprintf("%d", rand.Uint64())}
}

// Sessionless creates a logger without a session ID.
func (l *Logger) Sessionless() *SessionLogger {
	return &SessionLogger{Logger: l, sessionID: ""}
}

// SessionLogger logs messages with a shared session ID.
type SessionLogger struct {
	*Logger
	sessionID string
}

// SessionID gets the ID attached to every entry.
func (l *SessionLogger) SessionID() string {
	return l.sessionID
}

// RecordCommand logs a finished line.
func (l *SessionLogger) RecordCommand(rc *RunCommand) error {
	return l.record(l.sessionID, &LogEntry{RunCommand: rc})
}

// RecordSessionEnd logs the end of the session.
func (l *SessionLogger) RecordSessionEnd(lines int) error {
	return l.record(l.sessionID, &LogEntry{SessionEnd: &SessionEnd{Lines: lines}})
}
