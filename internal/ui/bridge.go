package ui

import (
	"context"
	"log/slog"

	"github.com/gatherfs/gather/internal/event"
)

// LogEvents consumes engine events and writes one structured record per
// event, blocking until the channel closes. The engine leaves timestamps,
// persistence and visibility to this layer: per-entry detail lands at
// debug, conflict resolutions and prunes at info, failures at error.
func LogEvents(logger *slog.Logger, events <-chan event.Event) {
	for ev := range events {
		level := slog.LevelInfo
		switch {
		case ev.Type == event.OpFailed:
			level = slog.LevelError
		case ev.Detail:
			level = slog.LevelDebug
		}

		attrs := []slog.Attr{
			slog.String("type", ev.Type.String()),
			slog.String("path", ev.Path),
		}
		if ev.NewPath != "" {
			attrs = append(attrs, slog.String("new_path", ev.NewPath))
		}
		if ev.Err != nil {
			attrs = append(attrs, slog.String("error", ev.Err.Error()))
		}
		logger.LogAttrs(context.Background(), level, "gather.event", attrs...)
	}
}
