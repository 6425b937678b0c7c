// Package ports defines the interfaces between the application core and its
// adapters. The application depends only on these contracts; the concrete
// Postgres and Discord implementations live under internal/adapters.
package ports

import (
	"context"
	"time"

	"quotebot/internal/domain"
)

// QuoteUpdate carries the edit form's field values. A nil field means "leave
// unchanged"; the store applies each field independently.
type QuoteUpdate struct {
	Quotation *string
	Author    *string
}

// QuoteStore persists quotes. Every operation is scoped to a single guild;
// quotes are never visible across guilds.
//
// Implementations translate storage failures into domain errors: a violated
// uniqueness constraint becomes domain.ErrConflict, a missing row becomes
// domain.ErrNotFound.
type QuoteStore interface {
	// Insert stores a new quote and returns it with its assigned ID.
	Insert(ctx context.Context, guildID, quotation, author string, saidAt time.Time) (*domain.Quote, error)

	// FetchAll returns every quote in the guild, oldest first.
	FetchAll(ctx context.Context, guildID string) ([]*domain.Quote, error)

	// FetchByAuthor returns the guild's quotes with an exact author match.
	FetchByAuthor(ctx context.Context, guildID, author string) ([]*domain.Quote, error)

	// FetchBySearch returns the guild's quotes whose quotation contains
	// substring. A non-empty author additionally requires an exact author
	// match.
	FetchBySearch(ctx context.Context, guildID, substring, author string) ([]*domain.Quote, error)

	// Count returns the number of quotes in the guild, optionally filtered
	// by exact author when author is non-empty.
	Count(ctx context.Context, guildID, author string) (int64, error)

	// UpdateByID applies the non-nil fields of update to a quote and returns
	// the updated row.
	UpdateByID(ctx context.Context, guildID string, id int64, update QuoteUpdate) (*domain.Quote, error)

	// DeleteByID removes a quote and returns the deleted row for
	// confirmation display.
	DeleteByID(ctx context.Context, guildID string, id int64) (*domain.Quote, error)

	// Leaderboard returns per-author quote counts, descending, truncated to
	// limit.
	Leaderboard(ctx context.Context, guildID string, limit int) ([]domain.AuthorCount, error)
}
