// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/reward"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotEligible is returned when claiming an article that was not read to the end.
var ErrNotEligible = errors.New("article has not been read to the end")

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for reading progress, claims and preferences.
type Store struct {
	db     *sql.DB
	amount reward.Amount
	now    func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{
		db:     db,
		amount: reward.NewAmount(0, 1),
		now:    time.Now,
	}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SetReward sets the amount credited by ClaimReward.
func (s *Store) SetReward(amount reward.Amount) {
	s.amount = amount
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS reading_progress (
			article_id TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			title TEXT NOT NULL,
			progress REAL NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS claims (
			article_id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			base REAL NOT NULL,
			multiplier REAL NOT NULL,
			amount REAL NOT NULL,
			claimed_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS preferences (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_claims_claimed_at ON claims(claimed_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveProgress stores reading progress. Stored progress never decreases.
func (s *Store) SaveProgress(ctx context.Context, art model.Article, progress float64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reading_progress (article_id, path, title, progress, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(article_id) DO UPDATE SET
			path = excluded.path,
			title = excluded.title,
			progress = MAX(reading_progress.progress, excluded.progress),
			updated_at = excluded.updated_at`,
		art.ID,
		art.Path,
		art.Title,
		progress,
		s.now().UTC().Format(timeLayout),
	)
	return err
}

// LoadProgress returns stored progress for an article, zero if unknown.
func (s *Store) LoadProgress(ctx context.Context, articleID string) (float64, error) {
	var progress float64
	err := s.db.QueryRowContext(ctx,
		`SELECT progress FROM reading_progress WHERE article_id = ?`, articleID).Scan(&progress)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return progress, nil
}

// ClaimReward credits the configured reward for an article read to the end.
// Claiming twice is idempotent: the recorded claim is returned with
// AlreadyClaimed set.
func (s *Store) ClaimReward(ctx context.Context, articleID string) (result model.ClaimResult, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.ClaimResult{}, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	var recorded float64
	err = tx.QueryRowContext(ctx, `SELECT amount FROM claims WHERE article_id = ?`, articleID).Scan(&recorded)
	switch {
	case err == nil:
		if err = tx.Commit(); err != nil {
			return model.ClaimResult{}, err
		}
		return model.ClaimResult{Success: true, AmountCollected: recorded, AlreadyClaimed: true}, nil
	case !errors.Is(err, sql.ErrNoRows):
		return model.ClaimResult{}, err
	}

	var progress float64
	var title string
	err = tx.QueryRowContext(ctx,
		`SELECT progress, title FROM reading_progress WHERE article_id = ?`, articleID).Scan(&progress, &title)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotEligible
		return model.ClaimResult{}, err
	}
	if err != nil {
		return model.ClaimResult{}, err
	}
	if progress < reward.CompleteProgress {
		err = ErrNotEligible
		return model.ClaimResult{}, err
	}

	result, err = s.recordClaim(ctx, tx, articleID, title)
	if err != nil {
		return model.ClaimResult{}, err
	}
	if err = tx.Commit(); err != nil {
		return model.ClaimResult{}, err
	}
	return result, nil
}

type queryExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// recordClaim inserts the claim row. When another writer recorded the claim
// first, its amount is returned with AlreadyClaimed set.
func (s *Store) recordClaim(ctx context.Context, q queryExecer, articleID, title string) (model.ClaimResult, error) {
	amount := s.amount
	res, err := q.ExecContext(ctx,
		`INSERT INTO claims (article_id, title, base, multiplier, amount, claimed_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(article_id) DO NOTHING`,
		articleID,
		title,
		amount.Base,
		amount.Factor(),
		amount.Value(),
		s.now().UTC().Format(timeLayout),
	)
	if err != nil {
		return model.ClaimResult{}, err
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return model.ClaimResult{}, err
	}
	if inserted == 1 {
		return model.ClaimResult{Success: true, AmountCollected: amount.Value()}, nil
	}
	var recorded float64
	if err := q.QueryRowContext(ctx, `SELECT amount FROM claims WHERE article_id = ?`, articleID).Scan(&recorded); err != nil {
		return model.ClaimResult{}, fmt.Errorf("read existing claim: %w", err)
	}
	return model.ClaimResult{Success: true, AmountCollected: recorded, AlreadyClaimed: true}, nil
}

// ClaimedAmount returns the recorded claim amount for an article.
func (s *Store) ClaimedAmount(ctx context.Context, articleID string) (float64, bool, error) {
	var amount float64
	err := s.db.QueryRowContext(ctx, `SELECT amount FROM claims WHERE article_id = ?`, articleID).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return amount, true, nil
}

// ListClaims returns claims filtered by wallet config, oldest first.
func (s *Store) ListClaims(ctx context.Context, cfg model.WalletConfig) ([]model.ClaimRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "claimed_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT article_id, title, base, multiplier, amount, claimed_at
		FROM claims
		WHERE %s
		ORDER BY claimed_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var claims []model.ClaimRecord
	for rows.Next() {
		var rec model.ClaimRecord
		var claimedAt string
		if err := rows.Scan(&rec.ArticleID, &rec.Title, &rec.Base, &rec.Multiplier, &rec.Amount, &claimedAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, claimedAt)
		if err != nil {
			return nil, err
		}
		rec.ClaimedAt = parsed
		claims = append(claims, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return claims, nil
}

// ListProgress returns stored reading progress, most recently read first.
func (s *Store) ListProgress(ctx context.Context) ([]model.ReadingRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT article_id, path, title, progress, updated_at
		 FROM reading_progress
		 ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.ReadingRecord
	for rows.Next() {
		var rec model.ReadingRecord
		var updatedAt string
		if err := rows.Scan(&rec.ArticleID, &rec.Path, &rec.Title, &rec.Progress, &updatedAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, updatedAt)
		if err != nil {
			return nil, err
		}
		rec.UpdatedAt = parsed
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Preference returns a stored preference value.
func (s *Store) Preference(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SetPreference stores a preference value.
func (s *Store) SetPreference(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	return err
}
