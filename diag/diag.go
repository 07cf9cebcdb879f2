// Package diag provides structured, JSON-encoded diagnostics for cold
// paths only: dispatcher panics, assembly bootstrap failures, roster
// load errors. It is the structured-output counterpart to debug.go's
// alloc-free stderr prints — diag.Fatal/diag.Warn run at most a handful
// of times per process lifetime, so the extra allocation of building an
// encodable record is immaterial, and JSON gives whatever is consuming
// stderr (a log shipper, a test harness) a parseable record instead of
// free-form text.
package diag

import (
	"fmt"
	"os"
	"time"

	"github.com/sugawarayuuta/sonnet"
)

// Record is one structured diagnostic line.
type Record struct {
	Time  string `json:"time"`
	Level string `json:"level"`
	Event string `json:"event"`
	Err   string `json:"err,omitempty"`
}

func encode(level, event string, err error) []byte {
	rec := Record{
		Time:  time.Now().UTC().Format(time.RFC3339Nano),
		Level: level,
		Event: event,
	}
	if err != nil {
		rec.Err = err.Error()
	}
	out, encErr := sonnet.Marshal(rec)
	if encErr != nil {
		// Encoding a four-field struct cannot realistically fail; if it
		// ever does, still get something onto stderr.
		return []byte(fmt.Sprintf(`{"time":%q,"level":%q,"event":%q}`, rec.Time, level, event))
	}
	return out
}

// Warn logs a non-fatal structured diagnostic to stderr. Used for
// events a dispatcher should surface but can keep running past, such as
// a roster falling back to its static default.
func Warn(event string, err error) {
	line := encode("warn", event, err)
	os.Stderr.Write(line)
	os.Stderr.Write([]byte("\n"))
}

// Fatal logs a structured diagnostic and exits the process with status
// 1. Called exactly once, right before unwinding — after a recovered
// Component panic or an unrecoverable Assembly bootstrap error — never
// from a hot path.
func Fatal(event string, err error) {
	line := encode("fatal", event, err)
	os.Stderr.Write(line)
	os.Stderr.Write([]byte("\n"))
	os.Exit(1)
}
