// Package postgres implements the quote store on a pgx connection pool.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quotebot/internal/domain"
	"quotebot/internal/ports"
)

// Config configures the connection pool.
type Config struct {
	URL            string
	MaxConns       int32
	MinConns       int32
	ConnectTimeout time.Duration
}

// Store is the Postgres-backed ports.QuoteStore.
type Store struct {
	pool *pgxpool.Pool
}

var _ ports.QuoteStore = (*Store)(nil)

// New opens a connection pool, verifies connectivity, and returns the store.
// The caller owns Close.
func New(ctx context.Context, cfg Config) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}

	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pcfg.MinConns = cfg.MinConns
	}
	if cfg.ConnectTimeout > 0 {
		pcfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string { return "postgres" }

// Check implements ports.HealthChecker.
func (s *Store) Check(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const quoteColumns = "id, quotation, author, said_at, guild_id"

// Insert stores a new quote. A violated uniqueness constraint surfaces as
// domain.ErrConflict.
func (s *Store) Insert(ctx context.Context, guildID, quotation, author string, saidAt time.Time) (*domain.Quote, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO quotes (guild_id, quotation, author, said_at)
		VALUES ($1, $2, $3, $4)
		RETURNING `+quoteColumns,
		guildID, quotation, author, saidAt,
	)

	q, err := scanQuote(row)
	if err != nil {
		return nil, mapError(err, "quote")
	}

	return q, nil
}

// FetchAll returns every quote in the guild, oldest first.
func (s *Store) FetchAll(ctx context.Context, guildID string) ([]*domain.Quote, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+quoteColumns+`
		FROM quotes
		WHERE guild_id = $1
		ORDER BY id`,
		guildID,
	)
	if err != nil {
		return nil, mapError(err, "quote")
	}

	return scanQuotes(rows)
}

// FetchByAuthor returns the guild's quotes with an exact author match.
func (s *Store) FetchByAuthor(ctx context.Context, guildID, author string) ([]*domain.Quote, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+quoteColumns+`
		FROM quotes
		WHERE guild_id = $1 AND author = $2
		ORDER BY id`,
		guildID, author,
	)
	if err != nil {
		return nil, mapError(err, "quote")
	}

	return scanQuotes(rows)
}

// FetchBySearch returns quotes whose quotation contains substring, optionally
// narrowed to an exact author. strpos keeps the match literal, so user input
// cannot smuggle pattern metacharacters.
func (s *Store) FetchBySearch(ctx context.Context, guildID, substring, author string) ([]*domain.Quote, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+quoteColumns+`
		FROM quotes
		WHERE guild_id = $1
		  AND strpos(quotation, $2) > 0
		  AND ($3 = '' OR author = $3)
		ORDER BY id`,
		guildID, substring, author,
	)
	if err != nil {
		return nil, mapError(err, "quote")
	}

	return scanQuotes(rows)
}

// Count returns the guild's quote count, optionally for one author.
func (s *Store) Count(ctx context.Context, guildID, author string) (int64, error) {
	var count int64

	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM quotes
		WHERE guild_id = $1 AND ($2 = '' OR author = $2)`,
		guildID, author,
	).Scan(&count)
	if err != nil {
		return 0, mapError(err, "quote")
	}

	return count, nil
}

// UpdateByID applies the non-nil fields of update. NULL parameters leave the
// stored column untouched via COALESCE.
func (s *Store) UpdateByID(ctx context.Context, guildID string, id int64, update ports.QuoteUpdate) (*domain.Quote, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE quotes
		SET quotation = COALESCE($3, quotation),
		    author    = COALESCE($4, author)
		WHERE guild_id = $1 AND id = $2
		RETURNING `+quoteColumns,
		guildID, id, update.Quotation, update.Author,
	)

	q, err := scanQuote(row)
	if err != nil {
		return nil, mapError(err, "quote")
	}

	return q, nil
}

// DeleteByID removes a quote and returns the deleted row.
func (s *Store) DeleteByID(ctx context.Context, guildID string, id int64) (*domain.Quote, error) {
	row := s.pool.QueryRow(ctx, `
		DELETE FROM quotes
		WHERE guild_id = $1 AND id = $2
		RETURNING `+quoteColumns,
		guildID, id,
	)

	q, err := scanQuote(row)
	if err != nil {
		return nil, mapError(err, "quote")
	}

	return q, nil
}

// Leaderboard returns per-author quote counts, descending. Author name breaks
// ties so the ordering is stable.
func (s *Store) Leaderboard(ctx context.Context, guildID string, limit int) ([]domain.AuthorCount, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT author, COUNT(*) AS quote_count
		FROM quotes
		WHERE guild_id = $1
		GROUP BY author
		ORDER BY quote_count DESC, author
		LIMIT $2`,
		guildID, limit,
	)
	if err != nil {
		return nil, mapError(err, "quote")
	}
	defer rows.Close()

	var board []domain.AuthorCount
	for rows.Next() {
		var entry domain.AuthorCount
		if err := rows.Scan(&entry.Author, &entry.Count); err != nil {
			return nil, mapError(err, "quote")
		}
		board = append(board, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "quote")
	}

	return board, nil
}

func scanQuote(row pgx.Row) (*domain.Quote, error) {
	var q domain.Quote
	err := row.Scan(&q.ID, &q.Quotation, &q.Author, &q.SaidAt, &q.GuildID)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func scanQuotes(rows pgx.Rows) ([]*domain.Quote, error) {
	defer rows.Close()

	var quotes []*domain.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, mapError(err, "quote")
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "quote")
	}

	return quotes, nil
}
