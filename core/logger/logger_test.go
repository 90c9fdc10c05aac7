package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock() time.Time {
	return time.Date(2006, 1, 2, 3, 4, 5, 0, time.UTC)
}

func TestNewJsonLinesLogRecorder(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewJsonLinesLogRecorder(buf)
	l.now = fixedClock

	sess := l.NewSession()
	assert.NotEmpty(t, sess.SessionID())

	assert.Nil(t, sess.RecordCommand(&RunCommand{Line: "ls -l", Program: "ls", Status: "0", Cwd: "/tmp"}))
	assert.Nil(t, sess.RecordSessionEnd(1))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)

	var first LogEntry
	assert.Nil(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, fixedClock().UnixNano()/1000, first.TimestampMicros)
	assert.Equal(t, sess.SessionID(), first.SessionID)
	assert.Equal(t, "ls -l", first.RunCommand.Line)
	assert.Nil(t, first.SessionEnd)

	var second LogEntry
	assert.Nil(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, 1, second.SessionEnd.Lines)
}

func TestSessionless(t *testing.T) {
	buf := &bytes.Buffer{}
	sess := NewJsonLinesLogRecorder(buf).Sessionless()

	assert.Nil(t, sess.RecordCommand(&RunCommand{Line: "pwd", Status: "0"}))
	assert.NotContains(t, buf.String(), "session_id")
}

func TestNopLogger(t *testing.T) {
	assert.Nil(t, NewNopLogger().NewSession().RecordCommand(&RunCommand{}))
}

func TestReport(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewJsonLinesLogRecorder(buf)
	sess := l.NewSession()
	other := l.NewSession()

	for _, rc := range []*RunCommand{
		{Line: "ls", Program: "ls", Status: "0"},
		{Line: "cat missing", Program: "cat", Status: "1"},
		{Line: "nope", Program: "nope", Status: "?", Error: "Command 'nope' not found."},
	} {
		assert.Nil(t, sess.RecordCommand(rc))
	}
	assert.Nil(t, other.RecordCommand(&RunCommand{Line: "cat missing", Program: "cat", Status: "1"}))
	assert.Nil(t, sess.RecordSessionEnd(3))

	report := NewReport()
	assert.Nil(t, ReadJSONLinesLog(buf, report.Update))

	out, err := json.Marshal(report)
	assert.Nil(t, err)
	assert.JSONEq(t, `{
		"log_entries": 5,
		"sessions": 2,
		"run_command_report": {
			"count": 4,
			"command_names": {"cat": 2, "ls": 1, "nope": 1},
			"statuses": {"0": 1, "1": 2, "?": 1}
		},
		"failures": [
			{"count": 2, "event": {"program": "cat", "status": "1", "error": ""}},
			{"count": 1, "event": {"program": "nope", "status": "?", "error": "Command 'nope' not found."}}
		]
	}`, string(out))
}

func TestReport_zeroValue(t *testing.T) {
	var report Report
	report.Update(&LogEntry{RunCommand: &RunCommand{Program: "ls", Status: "0"}})

	out, err := json.Marshal(report.RunCommand)
	assert.Nil(t, err)
	assert.JSONEq(t, `{"count": 1, "command_names": {"ls": 1}, "statuses": {"0": 1}}`, string(out))
	assert.Equal(t, 1, report.LogEntries)
}

func TestReadJSONLinesLog_invalid(t *testing.T) {
	err := ReadJSONLinesLog(strings.NewReader("{not json"), func(*LogEntry) {})
	assert.NotNil(t, err)
}
