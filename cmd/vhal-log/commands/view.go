// Package commands implements the vhal-log CLI commands.
package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/carprop/vhal-go/pkg/log"
	"github.com/carprop/vhal-go/pkg/vehicle"
)

const timeLayout = "2006-01-02T15:04:05.000000Z"

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	ClientID  vehicle.ClientID
	Direction *log.Direction
	Category  *log.Category
	Property  *vehicle.PropertyID
}

func (f ViewFilter) logFilter() log.Filter {
	return log.Filter{
		ClientID:  f.ClientID,
		Direction: f.Direction,
		Category:  f.Category,
		Property:  f.Property,
	}
}

// typeLabel names the payload carried by event.
func typeLabel(event log.Event) string {
	switch {
	case event.Call != nil:
		return event.Call.Type.String()
	case event.Results != nil:
		return event.Results.Operation.String() + " results"
	case event.Property != nil:
		return "Property " + event.Property.Source.String()
	case event.Subscription != nil:
		if event.Subscription.Removed {
			return "Unsubscribed"
		}
		return "Subscribed"
	case event.Error != nil:
		return "Error"
	default:
		return "Unknown"
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format(timeLayout)
	client := shortenClientID(event.ClientID)
	if client == "" {
		client = "hw"
	}
	fmt.Fprintf(w, "%s [client:%s] %-3s %s %s\n",
		ts, client, event.Direction, event.Category, typeLabel(event))

	switch {
	case event.Call != nil:
		formatCallDetails(w, event.Call)
	case event.Results != nil:
		formatResultDetails(w, event.Results)
	case event.Property != nil:
		formatPropertyDetails(w, event.Property)
	case event.Subscription != nil:
		formatSubscriptionDetails(w, event.Subscription)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

// shortenClientID returns the first 8 characters of the client id.
func shortenClientID(id vehicle.ClientID) string {
	if len(id) >= 8 {
		return string(id[:8])
	}
	return string(id)
}

func formatCallDetails(w io.Writer, call *log.CallEvent) {
	fmt.Fprintf(w, "  Count: %d", call.Count)
	if call.Shared {
		fmt.Fprint(w, " (shared buffer)")
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Status: %s\n", call.Status)
	if call.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", call.Reason)
	}
}

func formatResultDetails(w io.Writer, res *log.ResultEvent) {
	fmt.Fprintf(w, "  Source: %s", res.Source)
	if res.Shared {
		fmt.Fprint(w, " (shared buffer)")
	}
	fmt.Fprintln(w)
	for i, id := range res.RequestIDs {
		status := "?"
		if i < len(res.Statuses) {
			status = res.Statuses[i].String()
		}
		fmt.Fprintf(w, "  #%d %s\n", id, status)
	}
}

func formatPropertyDetails(w io.Writer, ev *log.PropertyEvent) {
	for _, v := range ev.Values {
		fmt.Fprintf(w, "  %s = %s", v.Key(), v.Value)
		if v.Timestamp != 0 {
			fmt.Fprintf(w, " @%s", time.Unix(0, v.Timestamp).UTC().Format(timeLayout))
		}
		fmt.Fprintln(w)
	}
}

func formatSubscriptionDetails(w io.Writer, sub *log.SubscriptionEvent) {
	for i, p := range sub.Properties {
		if !sub.Removed && i < len(sub.Rates) && sub.Rates[i] > 0 {
			fmt.Fprintf(w, "  %s at %gHz\n", p, sub.Rates[i])
			continue
		}
		fmt.Fprintf(w, "  %s\n", p)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Status != nil {
		fmt.Fprintf(w, "  Status: %s\n", *err.Status)
	}
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// ParseDirectionFlag parses a direction string (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// ParseCategoryFlag parses a category string (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "call":
		return log.CategoryCall, nil
	case "result":
		return log.CategoryResult, nil
	case "property":
		return log.CategoryProperty, nil
	case "subscription":
		return log.CategorySubscription, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be call, result, property, subscription, or error)", s)
	}
}

// ParsePropertyFlag parses a property id in decimal or 0x-prefixed hex.
func ParsePropertyFlag(s string) (vehicle.PropertyID, error) {
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid property id: %s", s)
	}
	return vehicle.PropertyID(int32(uint32(n))), nil
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter.logFilter())
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
}
