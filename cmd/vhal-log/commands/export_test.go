package commands

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunExportJSONL(t *testing.T) {
	path := writeTrace(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "out.jsonl")

	if err := RunExport(path, "jsonl", out); err != nil {
		t.Fatalf("RunExport: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var obj map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &obj); err != nil {
			t.Fatalf("line %d is not JSON: %v", lines+1, err)
		}
		lines++
	}
	if lines != len(sampleEvents()) {
		t.Errorf("exported %d lines, want %d", lines, len(sampleEvents()))
	}
}

func TestRunExportCSV(t *testing.T) {
	path := writeTrace(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "out.csv")

	if err := RunExport(path, "csv", out); err != nil {
		t.Fatalf("RunExport: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("parse CSV: %v", err)
	}
	if len(records) != len(sampleEvents())+1 {
		t.Fatalf("got %d records, want header + %d", len(records), len(sampleEvents()))
	}
	if strings.Join(records[0], ",") != strings.Join(csvHeader, ",") {
		t.Errorf("header = %v", records[0])
	}
	// Sampled property row lists the key.
	row := records[5]
	if row[3] != "PROPERTY" || row[7] != propSpeed.String()+"/0" {
		t.Errorf("property row = %v", row)
	}
	// Rejected call row carries the status.
	if records[6][6] != "INVALID_ARG" {
		t.Errorf("call row status = %q", records[6][6])
	}
}

func TestRunExportUnknownFormat(t *testing.T) {
	path := writeTrace(t, sampleEvents())
	err := RunExport(path, "xml", filepath.Join(t.TempDir(), "out.xml"))
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("RunExport(xml) error = %v", err)
	}
}
