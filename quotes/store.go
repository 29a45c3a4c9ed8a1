// Package quotes implements the durable quote store: guild-scoped CRUD,
// uniform random retrieval with usage counting, and popularity ranking.
// All operations run against a single local sqlite database; unexpected
// storage errors are returned to the caller and are the only failure class
// that reaches the generic top-level handler.
package quotes

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/silvercord/recorder/telemetry"
)

// Quote is one stored text snippet attributed to a user.
type Quote struct {
	ID             int64
	GuildID        string
	UserID         string
	Content        string
	Timestamp      int64 // unix seconds of the original message
	ChannelID      string
	AdderUserID    string
	AddedTimestamp int64 // unix seconds of the save action
	Uses           int64
}

// SaveStatus is the outcome of a save attempt.
type SaveStatus int

const (
	Created SaveStatus = iota
	RejectedDuplicate
	RejectedInvalid
)

// SaveResult carries the status plus a user-facing reason for rejections.
type SaveResult struct {
	Status SaveStatus
	Reason string
	Quote  *Quote
}

// SaveRequest is everything the boundary layer knows about the message being
// saved. Origin flags are validated here so the storage rules live in one
// place.
type SaveRequest struct {
	GuildID     string
	AuthorID    string
	Content     string
	ChannelID   string
	AdderID     string
	AuthorIsBot bool
	FromWebhook bool
	CapturedAt  time.Time
}

// Store wraps the quotes table.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(database *sql.DB) *Store {
	return &Store{db: database, now: time.Now}
}

// validate returns a rejection reason for content the store refuses to keep,
// or empty when acceptable.
func validate(req SaveRequest) string {
	switch {
	case strings.TrimSpace(req.Content) == "":
		return "cannot save empty messages"
	case req.AuthorIsBot:
		return "cannot save messages from bots"
	case req.FromWebhook:
		return "cannot save webhook messages"
	case strings.Contains(req.Content, "http://") || strings.Contains(req.Content, "https://"):
		return "cannot save messages containing links"
	}
	return ""
}

// Save stores a new quote. Duplicates of (guild, author, content) are
// rejected, not overwritten; the unique index backstops the pre-check under
// concurrent saves.
func (s *Store) Save(ctx context.Context, req SaveRequest) (SaveResult, error) {
	if reason := validate(req); reason != "" {
		return SaveResult{Status: RejectedInvalid, Reason: reason}, nil
	}

	var existing int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM quotes WHERE guild_id = ? AND user_id = ? AND content = ?`,
		req.GuildID, req.AuthorID, req.Content).Scan(&existing)
	if err == nil {
		return SaveResult{Status: RejectedDuplicate, Reason: "quote already saved"}, nil
	}
	if err != sql.ErrNoRows {
		return SaveResult{}, fmt.Errorf("duplicate check: %w", err)
	}

	captured := req.CapturedAt
	if captured.IsZero() {
		captured = s.now()
	}
	added := s.now().Unix()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO quotes (guild_id, user_id, content, timestamp, channel_id, adder_user_id, added_timestamp, uses)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0)`,
		req.GuildID, req.AuthorID, req.Content, captured.Unix(), req.ChannelID, req.AdderID, added)
	if err != nil {
		if isUniqueViolation(err) {
			return SaveResult{Status: RejectedDuplicate, Reason: "quote already saved"}, nil
		}
		return SaveResult{}, fmt.Errorf("insert quote: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return SaveResult{}, fmt.Errorf("last insert id: %w", err)
	}

	telemetry.QuotesSaved.Inc()
	q := &Quote{
		ID: id, GuildID: req.GuildID, UserID: req.AuthorID, Content: req.Content,
		Timestamp: captured.Unix(), ChannelID: req.ChannelID, AdderUserID: req.AdderID,
		AddedTimestamp: added,
	}
	return SaveResult{Status: Created, Quote: q}, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

const quoteColumns = `id, guild_id, user_id, content, timestamp, channel_id, adder_user_id, added_timestamp, uses`

func scanQuote(row interface{ Scan(...any) error }) (*Quote, error) {
	var q Quote
	if err := row.Scan(&q.ID, &q.GuildID, &q.UserID, &q.Content, &q.Timestamp, &q.ChannelID, &q.AdderUserID, &q.AddedTimestamp, &q.Uses); err != nil {
		return nil, err
	}
	return &q, nil
}

// FetchRandom returns a uniformly random eligible quote, incrementing its use
// counter as part of the same transaction. authorID narrows the pool to one
// author when non-empty. Returns (nil, nil) when no quote matches.
func (s *Store) FetchRandom(ctx context.Context, guildID, authorID string) (*Quote, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `SELECT ` + quoteColumns + ` FROM quotes
		WHERE guild_id = ? AND content NOT LIKE '%http%'`
	args := []any{guildID}
	if authorID != "" {
		query += ` AND user_id = ?`
		args = append(args, authorID)
	}
	query += ` ORDER BY RANDOM() LIMIT 1`

	q, err := scanQuote(tx.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("random select: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE quotes SET uses = uses + 1 WHERE id = ?`, q.ID); err != nil {
		return nil, fmt.Errorf("increment uses: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	q.Uses++
	telemetry.QuotesServed.Inc()
	return q, nil
}

// ListByAuthor returns all of an author's quotes in a guild, newest-added
// first.
func (s *Store) ListByAuthor(ctx context.Context, guildID, authorID string) ([]Quote, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+quoteColumns+` FROM quotes
		 WHERE guild_id = ? AND user_id = ?
		 ORDER BY added_timestamp DESC`, guildID, authorID)
	if err != nil {
		return nil, fmt.Errorf("list by author: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}

// Top returns the ten most-used quotes of a guild (uses > 0), optionally
// restricted to one author.
func (s *Store) Top(ctx context.Context, guildID, authorID string) ([]Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes
		WHERE guild_id = ? AND uses > 0`
	args := []any{guildID}
	if authorID != "" {
		query += ` AND user_id = ?`
		args = append(args, authorID)
	}
	query += ` ORDER BY uses DESC LIMIT 10`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("top quotes: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows *sql.Rows) ([]Quote, error) {
	var out []Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

// Get fetches one quote by id. Returns (nil, nil) when absent.
func (s *Store) Get(ctx context.Context, id int64) (*Quote, error) {
	q, err := scanQuote(s.db.QueryRowContext(ctx,
		`SELECT `+quoteColumns+` FROM quotes WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get quote: %w", err)
	}
	return q, nil
}

// Delete removes a quote by id. Deleting an absent id is not an error.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quotes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		telemetry.QuotesDeleted.Inc()
	}
	return nil
}

// Count returns the number of stored quotes across all guilds, for the
// telemetry gauge.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM quotes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count quotes: %w", err)
	}
	return n, nil
}
