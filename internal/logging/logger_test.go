package logging

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"
)

func TestWithRequestIDRoundTripsThroughContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	if got := FromContext(ctx); got != "req-123" {
		t.Fatalf("FromContext() = %q; want req-123", got)
	}
}

func TestFromContextEmptyWithoutRequestID(t *testing.T) {
	if got := FromContext(context.Background()); got != "" {
		t.Fatalf("FromContext() = %q; want empty string", got)
	}
}

func TestRequestLogWritesOneJSONLineWithSeverity(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "reqlog-*.jsonl")
	if err != nil {
		t.Fatalf("CreateTemp() error = %v", err)
	}
	defer f.Close()

	RequestLog(f, "req-1", "cameracontroller", "POST", "/set_camera_position", 500, 12*time.Millisecond, "boom")

	data, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("Unmarshal() error = %v; data = %s", err, data)
	}
	if entry.Level != "error" {
		t.Fatalf("Level = %q; want error for status 500", entry.Level)
	}
	if entry.RequestID != "req-1" || entry.Status != 500 || entry.Error != "boom" {
		t.Fatalf("entry = %+v; unexpected fields", entry)
	}
}

func TestRequestLogLevelsBySeverity(t *testing.T) {
	cases := []struct {
		status int
		want   string
	}{
		{200, "info"},
		{404, "warn"},
		{500, "error"},
	}
	for _, tc := range cases {
		f, err := os.CreateTemp(t.TempDir(), "reqlog-*.jsonl")
		if err != nil {
			t.Fatalf("CreateTemp() error = %v", err)
		}
		RequestLog(f, "req", "ext", "GET", "/x", tc.status, time.Millisecond, "")
		data, err := os.ReadFile(f.Name())
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if entry.Level != tc.want {
			t.Fatalf("status %d: Level = %q; want %q", tc.status, entry.Level, tc.want)
		}
		f.Close()
	}
}

func TestNewReturnsUsableLogger(t *testing.T) {
	if l := New("json"); l == nil {
		t.Fatalf("New(json) = nil")
	}
	if l := New("text"); l == nil {
		t.Fatalf("New(text) = nil")
	}
}
