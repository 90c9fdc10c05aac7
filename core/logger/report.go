package logger

import (
	"encoding/json"
	"io"
	"sort"
)

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}

		handler(&logEntry)
	}
	return nil
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries int `json:"log_entries"`
	Sessions   int `json:"sessions"`

	RunCommand RunCommandReport `json:"run_command_report"`
	Failures   *PathCounter     `json:"failures"`

	seenSessions map[string]bool
}

// NewReport creates an empty report.
func NewReport() *Report {
	r := &Report{}
	r.init()
	return r
}

func (r *Report) init() {
	if r.Failures == nil {
		r.Failures = NewPathCounter("program", "status", "error")
	}
	if r.seenSessions == nil {
		r.seenSessions = make(map[string]bool)
	}
}

func (r *Report) Update(le *LogEntry) {
	r.init()
	r.LogEntries++

	if le.SessionID != "" && !r.seenSessions[le.SessionID] {
		r.seenSessions[le.SessionID] = true
		r.Sessions++
	}

	if rc := le.RunCommand; rc != nil {
		r.RunCommand.update(rc)
		if rc.Status != "0" || rc.Error != "" {
			r.Failures.Increment(rc.Program, rc.Status, rc.Error)
		}
	}
}

type RunCommandReport struct {
	Count int `json:"count"`
	// Name of the command
	CommandNames StrCounter `json:"command_names"`
	// Statuses the lines finished with.
	Statuses StrCounter `json:"statuses"`
}

func (r *RunCommandReport) update(rc *RunCommand) {
	r.Count++
	if rc.Program != "" {
		r.CommandNames.Increment(rc.Program)
	}
	r.Statuses.Increment(rc.Status)
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// MarshalJSON implemnts custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	if s.internal == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.internal)
}

func NewPathCounter(cols ...string) *PathCounter {
	return &PathCounter{
		cols:     cols,
		internal: make(map[string]int),
	}
}

// PathCounter counts the number of strings seen.
type PathCounter struct {
	cols     []string
	internal map[string]int
}

// Increment adds one to the given key.
func (ctr *PathCounter) Increment(toAdd ...string) {
	if len(toAdd) != len(ctr.cols) {
		panic("wrong number of columns to add")
	}

	ctr.internal[toKey(toAdd...)]++
}

// MarshalJSON implemnts custom JSON marshaler.
func (ctr *PathCounter) MarshalJSON() ([]byte, error) {
	type Count struct {
		Count  int               `json:"count"`
		Fields map[string]string `json:"event"`
		Path   string            `json:"-"`
	}

	out := []Count{}
	for k, v := range ctr.internal {
		count := Count{
			Count:  v,
			Path:   k,
			Fields: make(map[string]string),
		}

		splitPath := fromKey(k)
		for colNum, colVal := range ctr.cols {
			count.Fields[colVal] = splitPath[colNum]
		}

		out = append(out, count)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Path < out[j].Path
		}
		return out[i].Count > out[j].Count
	})

	return json.Marshal(out)
}

func toKey(vals ...string) string {
	key, _ := json.Marshal(vals)
	return string(key)
}

func fromKey(key string) (out []string) {
	json.Unmarshal([]byte(key), &out)
	return
}
