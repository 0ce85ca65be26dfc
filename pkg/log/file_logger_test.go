package log

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/carprop/vhal-go/pkg/vehicle"
)

func writeTrace(t *testing.T, events ...Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "broker.vlog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	for _, ev := range events {
		logger.Log(ev)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return path
}

func TestFileLoggerCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broker.vlog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("trace file was not created")
	}
}

func TestFileLoggerOpenError(t *testing.T) {
	if _, err := NewFileLogger(filepath.Join(t.TempDir(), "missing", "x.vlog")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestFileLoggerRoundTrip(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	path := writeTrace(t,
		Event{Timestamp: base, ClientID: "a", Category: CategoryCall, Call: &CallEvent{Type: CallGetValues, Count: 2}},
		Event{Timestamp: base.Add(time.Second), ClientID: "b", Direction: DirectionOut, Category: CategoryResult,
			Results: &ResultEvent{Operation: vehicle.OpSetValues, RequestIDs: []int64{7}}},
	)

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	events, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Call == nil || events[0].Call.Count != 2 {
		t.Errorf("first event: %+v", events[0])
	}
	if events[1].Results == nil || events[1].Results.RequestIDs[0] != 7 {
		t.Errorf("second event: %+v", events[1])
	}
}

func TestFileLoggerIgnoresAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broker.vlog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	logger.Log(Event{Timestamp: time.Now()})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("file has %d bytes after closed Log", len(data))
	}
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broker.vlog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				logger.Log(Event{Timestamp: time.Now(), Category: CategoryProperty,
					Property: &PropertyEvent{Source: FromSample}})
			}
		}()
	}
	wg.Wait()
	logger.Close()

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()
	events, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(events) != 200 {
		t.Errorf("got %d events, want 200", len(events))
	}
	if logger.Failed() != 0 {
		t.Errorf("failed writes: %d", logger.Failed())
	}
}
