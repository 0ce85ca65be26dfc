package commands

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/carprop/vhal-go/pkg/log"
)

// RunExport exports the trace file to the specified format.
func RunExport(path, format, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
}

var csvHeader = []string{"timestamp", "client_id", "direction", "category", "type", "count", "status", "properties"}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return cw.Error()
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := cw.Write(csvRow(event)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
}

func csvRow(event log.Event) []string {
	var count int
	var status string
	var props []string

	switch {
	case event.Call != nil:
		count = event.Call.Count
		status = event.Call.Status.String()
	case event.Results != nil:
		count = len(event.Results.RequestIDs)
	case event.Property != nil:
		count = len(event.Property.Values)
		for _, v := range event.Property.Values {
			props = append(props, v.Key().String())
		}
	case event.Subscription != nil:
		count = len(event.Subscription.Properties)
		for _, p := range event.Subscription.Properties {
			props = append(props, p.String())
		}
	case event.Error != nil:
		if event.Error.Status != nil {
			status = event.Error.Status.String()
		}
	}

	return []string{
		event.Timestamp.UTC().Format(timeLayout),
		string(event.ClientID),
		event.Direction.String(),
		event.Category.String(),
		typeLabel(event),
		strconv.Itoa(count),
		status,
		strings.Join(props, ";"),
	}
}
