package tui

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/yardline/yardline/internal/model"
	"github.com/yardline/yardline/internal/viewctl"
)

// deps are shared by every page constructor.
type deps struct {
	backend      model.Backend
	keys         KeyMap
	signals      *viewctl.Signals
	clock        viewctl.Clock
	interval     time.Duration
	pageSize     int
	fetchTimeout time.Duration
	logger       zerolog.Logger
}

func listConfig[T any, K comparable](d deps, id, title, noun string) ListConfig[T, K] {
	return ListConfig[T, K]{
		ID:           id,
		Title:        title,
		Noun:         noun,
		Interval:     d.interval,
		PageSize:     d.pageSize,
		FetchTimeout: d.fetchTimeout,
		Clock:        d.clock,
		Signals:      d.signals,
		Keys:         d.keys,
		Logger:       d.logger.With().Str("page", id).Logger(),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
