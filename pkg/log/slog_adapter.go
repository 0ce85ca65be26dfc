package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes trace events to an slog.Logger at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("direction", event.Direction.String()),
		slog.String("category", event.Category.String()),
	}
	if event.ClientID != "" {
		attrs = append(attrs, slog.String("client_id", string(event.ClientID)))
	}

	switch {
	case event.Call != nil:
		attrs = append(attrs,
			slog.String("call", event.Call.Type.String()),
			slog.Int("count", event.Call.Count),
			slog.String("status", event.Call.Status.String()),
		)
		if event.Call.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.Call.Reason))
		}
		if event.Call.Shared {
			attrs = append(attrs, slog.Bool("shared", true))
		}
	case event.Results != nil:
		attrs = append(attrs,
			slog.String("op", event.Results.Operation.String()),
			slog.String("source", event.Results.Source.String()),
			slog.Int("count", len(event.Results.RequestIDs)),
		)
	case event.Property != nil:
		attrs = append(attrs,
			slog.String("source", event.Property.Source.String()),
			slog.Int("count", len(event.Property.Values)),
		)
	case event.Subscription != nil:
		attrs = append(attrs,
			slog.Bool("removed", event.Subscription.Removed),
			slog.Int("count", len(event.Subscription.Properties)),
		)
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
		if event.Error.Status != nil {
			attrs = append(attrs, slog.String("error_status", event.Error.Status.String()))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "trace", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
