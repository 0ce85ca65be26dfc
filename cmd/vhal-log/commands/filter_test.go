package commands

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/carprop/vhal-go/pkg/log"
)

func readAll(t *testing.T, path string) []log.Event {
	t.Helper()
	r, err := log.NewReader(path)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()
	events, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	return events
}

func TestRunFilterByClient(t *testing.T) {
	path := writeTrace(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "client.vlog")

	var buf bytes.Buffer
	err := RunFilter(path, FilterOptions{Output: out, ClientID: string(clientB)}, &buf)
	if err != nil {
		t.Fatalf("RunFilter: %v", err)
	}
	if !strings.Contains(buf.String(), "Filtered 3 events") {
		t.Errorf("summary = %q", buf.String())
	}
	for _, ev := range readAll(t, out) {
		if ev.ClientID != clientB {
			t.Errorf("event of %s in filtered file", ev.ClientID)
		}
	}
}

func TestRunFilterByProperty(t *testing.T) {
	path := writeTrace(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "speed.vlog")

	err := RunFilter(path, FilterOptions{Output: out, Property: propSpeed.String()}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("RunFilter: %v", err)
	}
	events := readAll(t, out)
	if len(events) != 2 {
		t.Fatalf("got %d events, want subscription + property event", len(events))
	}
}

func TestRunFilterByTimeAndCategory(t *testing.T) {
	path := writeTrace(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "late.vlog")

	opts := FilterOptions{
		Output:    out,
		TimeStart: "2026-03-02T08:30:00Z",
		TimeEnd:   "2026-03-02T08:31:00Z",
		Category:  "result",
	}
	if err := RunFilter(path, opts, &bytes.Buffer{}); err != nil {
		t.Fatalf("RunFilter: %v", err)
	}
	if n := len(readAll(t, out)); n != 2 {
		t.Errorf("got %d result events, want 2", n)
	}
}

func TestRunFilterInvalidOptions(t *testing.T) {
	path := writeTrace(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "x.vlog")

	tests := []struct {
		name string
		opts FilterOptions
	}{
		{"bad time", FilterOptions{Output: out, TimeStart: "yesterday"}},
		{"bad direction", FilterOptions{Output: out, Direction: "up"}},
		{"bad category", FilterOptions{Output: out, Category: "frame"}},
		{"bad property", FilterOptions{Output: out, Property: "speed"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := RunFilter(path, tt.opts, &bytes.Buffer{}); err == nil {
				t.Error("RunFilter expected error")
			}
		})
	}
}
