package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/carprop/vhal-go/pkg/log"
	"github.com/carprop/vhal-go/pkg/vehicle"
)

// Stats holds aggregate statistics about a trace file.
type Stats struct {
	TotalEvents       int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	CallsByType       map[log.CallType]int
	Rejected          int
	ResultsBySource   map[log.ResultSource]int
	StatusCounts      map[vehicle.StatusCode]int
	PropertyEvents    map[vehicle.PropertyID]int
	Clients           map[vehicle.ClientID]*ClientStats
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// ClientStats holds statistics for a single client session.
type ClientStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	Calls     int
	Timeouts  int
}

func newStats() *Stats {
	return &Stats{
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		CallsByType:       make(map[log.CallType]int),
		ResultsBySource:   make(map[log.ResultSource]int),
		StatusCounts:      make(map[vehicle.StatusCode]int),
		PropertyEvents:    make(map[vehicle.PropertyID]int),
		Clients:           make(map[vehicle.ClientID]*ClientStats),
	}
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByCategory[event.Category]++
	s.EventsByDirection[event.Direction]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	var client *ClientStats
	if event.ClientID != "" {
		client = s.Clients[event.ClientID]
		if client == nil {
			client = &ClientStats{FirstSeen: event.Timestamp, LastSeen: event.Timestamp}
			s.Clients[event.ClientID] = client
		}
		client.Events++
		if event.Timestamp.After(client.LastSeen) {
			client.LastSeen = event.Timestamp
		}
	}

	switch {
	case event.Call != nil:
		s.CallsByType[event.Call.Type]++
		if event.Call.Status != vehicle.StatusOK {
			s.Rejected++
		}
		if client != nil {
			client.Calls++
		}
	case event.Results != nil:
		s.ResultsBySource[event.Results.Source] += len(event.Results.RequestIDs)
		for _, st := range event.Results.Statuses {
			s.StatusCounts[st]++
		}
		if client != nil && event.Results.Source == log.SourceTimeout {
			client.Timeouts += len(event.Results.RequestIDs)
		}
	case event.Property != nil:
		for _, v := range event.Property.Values {
			s.PropertyEvents[v.Property]++
		}
	case event.Error != nil:
		s.Errors++
	}
}

// RunStats analyzes the trace file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := newStats()
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Vehicle Property Broker Trace Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryCall, log.CategoryResult, log.CategoryProperty, log.CategorySubscription, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Direction:")
	for _, dir := range []log.Direction{log.DirectionIn, log.DirectionOut} {
		if count := stats.EventsByDirection[dir]; count > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", dir.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if len(stats.CallsByType) > 0 {
		fmt.Fprintln(w, "Calls:")
		for _, ct := range []log.CallType{log.CallGetValues, log.CallSetValues, log.CallSubscribe, log.CallUnsubscribe, log.CallRegister, log.CallDropClient} {
			if count := stats.CallsByType[ct]; count > 0 {
				fmt.Fprintf(w, "  %-14s %d\n", ct.String()+":", count)
			}
		}
		fmt.Fprintf(w, "  %-14s %d\n", "REJECTED:", stats.Rejected)
		fmt.Fprintln(w)
	}

	if len(stats.ResultsBySource) > 0 {
		fmt.Fprintln(w, "Results by Source:")
		for _, src := range []log.ResultSource{log.SourceHardware, log.SourceLocal, log.SourceTimeout} {
			if count := stats.ResultsBySource[src]; count > 0 {
				fmt.Fprintf(w, "  %-14s %d\n", src.String()+":", count)
			}
		}
		fmt.Fprintln(w, "Results by Status:")
		codes := make([]vehicle.StatusCode, 0, len(stats.StatusCounts))
		for code := range stats.StatusCounts {
			codes = append(codes, code)
		}
		sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
		for _, code := range codes {
			fmt.Fprintf(w, "  %-14s %d\n", code.String()+":", stats.StatusCounts[code])
		}
		fmt.Fprintln(w)
	}

	if len(stats.PropertyEvents) > 0 {
		fmt.Fprintln(w, "Property Events:")
		props := make([]vehicle.PropertyID, 0, len(stats.PropertyEvents))
		for p := range stats.PropertyEvents {
			props = append(props, p)
		}
		sort.Slice(props, func(i, j int) bool { return uint32(props[i]) < uint32(props[j]) })
		for _, p := range props {
			fmt.Fprintf(w, "  %s %d\n", p, stats.PropertyEvents[p])
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Clients: %d\n", len(stats.Clients))
	if len(stats.Clients) > 0 {
		type clientInfo struct {
			id    vehicle.ClientID
			stats *ClientStats
		}
		clients := make([]clientInfo, 0, len(stats.Clients))
		for id, cs := range stats.Clients {
			clients = append(clients, clientInfo{id, cs})
		}
		sort.Slice(clients, func(i, j int) bool {
			return clients[i].stats.FirstSeen.Before(clients[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, c := range clients {
			duration := c.stats.LastSeen.Sub(c.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, %d calls, duration %s\n",
				shortenClientID(c.id), c.stats.Events, c.stats.Calls, duration)
			if c.stats.Timeouts > 0 {
				fmt.Fprintf(w, "           Timeouts: %d\n", c.stats.Timeouts)
			}
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
