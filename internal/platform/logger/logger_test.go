package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLogger_JSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Info, Format: FormatJSON, App: "foster-tracker", Output: &buf})

	l.With(map[string]any{"module": "listing"}).Info("listing resolved", map[string]any{"path": "server"})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid json line %q: %v", buf.String(), err)
	}
	for k, want := range map[string]string{"app": "foster-tracker", "module": "listing", "path": "server", "level": "info", "msg": "listing resolved"} {
		if entry[k] != want {
			t.Fatalf("%s: expected %q, got %v", k, want, entry[k])
		}
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Warn, Output: &buf})

	l.Info("dropped", nil)
	l.Warn("kept", map[string]any{"b": 2, "a": 1})

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info should be filtered: %q", out)
	}
	if !strings.Contains(out, "a=1 b=2") {
		t.Fatalf("text fields should be sorted: %q", out)
	}
}

func TestParse(t *testing.T) {
	if ParseLevel("WARNING") != Warn || ParseLevel("nope") != Info {
		t.Fatalf("unexpected level parsing")
	}
	if ParseFormat("JSON") != FormatJSON || ParseFormat("") != FormatText {
		t.Fatalf("unexpected format parsing")
	}
	if ErrField(nil) != nil {
		t.Fatalf("nil error should map to nil")
	}
}
