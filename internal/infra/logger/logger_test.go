package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestLevels(t *testing.T) {
	tests := []struct {
		env, level string
		debugShown bool
	}{
		{"dev", "", true},
		{"prod", "", false},
		{"dev", "warn", false},
		{"prod", "DEBUG", true},
	}
	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.level, func(t *testing.T) {
			buf := &bytes.Buffer{}
			log, err := newLogger(buf, tt.env, tt.level)
			if err != nil {
				t.Fatal(err)
			}
			log.Debug("debug line")
			if got := buf.Len() > 0; got != tt.debugShown {
				t.Errorf("debug shown = %v, want %v", got, tt.debugShown)
			}
		})
	}
}

func TestJSONFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := newLogger(buf, "prod", "")
	if err != nil {
		t.Fatal(err)
	}
	log.Info("hello", "owner_id", 7)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("not JSON: %q", buf.String())
	}
	if rec["service"] != "recycle-stock" || rec["env"] != "prod" || rec["owner_id"] != float64(7) {
		t.Errorf("record = %v", rec)
	}
}

func TestBadLevel(t *testing.T) {
	if _, err := New("prod", "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
