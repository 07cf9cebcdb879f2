package diag

import (
	"errors"
	"strings"
	"testing"
)

func TestEncodeIncludesEventAndErr(t *testing.T) {
	out := encode("warn", "roster.load", errors.New("boom"))
	s := string(out)
	if !strings.Contains(s, `"event":"roster.load"`) {
		t.Fatalf("expected event field, got %s", s)
	}
	if !strings.Contains(s, `"err":"boom"`) {
		t.Fatalf("expected err field, got %s", s)
	}
	if !strings.Contains(s, `"level":"warn"`) {
		t.Fatalf("expected level field, got %s", s)
	}
}

func TestEncodeOmitsErrWhenNil(t *testing.T) {
	out := encode("warn", "heartbeat", nil)
	if strings.Contains(string(out), `"err"`) {
		t.Fatalf("expected no err field, got %s", string(out))
	}
}
