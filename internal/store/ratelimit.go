package store

import (
	"context"
	"fmt"
	"log/slog"
)

// QueryCounter counts a user's same-day invocations. *Store implements it.
type QueryCounter interface {
	CountQueriesToday(ctx context.Context, telegramID, queryType string) (int, error)
}

// Limiter enforces the daily invocation cap on /vacantes.
type Limiter struct {
	counter   QueryCounter
	adminID   string
	maxPerDay int
}

func NewLimiter(counter QueryCounter, adminID string, maxPerDay int) *Limiter {
	return &Limiter{
		counter:   counter,
		adminID:   adminID,
		maxPerDay: maxPerDay,
	}
}

// CanMakeQuery reports whether the user may run another search today. When
// denied, the second return value carries the user-facing denial message.
//
// The admin bypasses the cap without a count. If the count lookup fails the
// limiter fails open: an outage in the logging store must not block the
// feature entirely.
func (l *Limiter) CanMakeQuery(ctx context.Context, telegramID string) (bool, string) {
	if l.adminID != "" && telegramID == l.adminID {
		slog.Debug("admin bypass", "telegram_id", telegramID)
		return true, ""
	}

	count, err := l.counter.CountQueriesToday(ctx, telegramID, QueryTypeVacantes)
	if err != nil {
		slog.Error("no se pudo contar queries, se permite (fail-open)",
			"telegram_id", telegramID, "error", err)
		return true, ""
	}

	if count >= l.maxPerDay {
		slog.Warn("rate limit alcanzado", "telegram_id", telegramID, "count", count)
		return false, fmt.Sprintf(
			"⏱️ Ya alcanzaste %d búsquedas hoy.\n\nVuelve mañana para más empleos. 😴",
			l.maxPerDay)
	}

	return true, ""
}
