// Package store persists user profiles and query logs in the hosted
// Postgres (Supabase) database.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/waterboxdeveloper/miprimerachamba-bot/pkg/types"
)

// QueryTypeVacantes labels on-demand search invocations in query_logs.
const QueryTypeVacantes = "vacantes"

// Invocation outcome statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type Store struct {
	pool *pgxpool.Pool
}

// New opens a connection pool and verifies the expected tables exist.
// The tables are created out of band (Supabase SQL editor), never here.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	for _, table := range []string{"usuarios", "query_logs"} {
		if _, err := pool.Exec(ctx, fmt.Sprintf("SELECT 1 FROM %s LIMIT 0", table)); err != nil {
			pool.Close()
			return nil, fmt.Errorf("table %q missing: %w", table, err)
		}
	}

	slog.Info("conexión a base de datos verificada")

	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// CreateUser inserts a new profile.
func (s *Store) CreateUser(ctx context.Context, user *types.User) error {
	keywordsJSON, err := json.Marshal(user.Keywords)
	if err != nil {
		return fmt.Errorf("failed to marshal keywords: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO usuarios (telegram_id, name, keywords, location_preference, job_type, experience_level, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.TelegramID, user.Name, string(keywordsJSON), user.Country,
		nullable(user.JobType), user.ExperienceLevel, user.IsActive, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert user %s: %w", user.TelegramID, err)
	}

	slog.Info("usuario creado", "telegram_id", user.TelegramID)
	return nil
}

// GetUserProfile returns the user's profile if it exists and is active,
// (nil, nil) when there is no active profile.
func (s *Store) GetUserProfile(ctx context.Context, telegramID string) (*types.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT telegram_id, name, keywords, location_preference, COALESCE(job_type, ''), experience_level, is_active
		FROM usuarios
		WHERE telegram_id = $1 AND is_active = TRUE`,
		telegramID)

	var user types.User
	var keywordsJSON []byte
	err := row.Scan(&user.TelegramID, &user.Name, &keywordsJSON, &user.Country,
		&user.JobType, &user.ExperienceLevel, &user.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", telegramID, err)
	}

	if len(keywordsJSON) > 0 {
		if err := json.Unmarshal(keywordsJSON, &user.Keywords); err != nil {
			return nil, fmt.Errorf("failed to unmarshal keywords for %s: %w", telegramID, err)
		}
	}

	return &user, nil
}

// UpdateUser overwrites the profile's search preferences.
func (s *Store) UpdateUser(ctx context.Context, telegramID string, keywords []string, country, jobType string) error {
	keywordsJSON, err := json.Marshal(keywords)
	if err != nil {
		return fmt.Errorf("failed to marshal keywords: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE usuarios
		SET keywords = $2, location_preference = $3, job_type = $4, updated_at = $5
		WHERE telegram_id = $1`,
		telegramID, string(keywordsJSON), country, nullable(jobType), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", telegramID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found", telegramID)
	}

	slog.Info("usuario actualizado", "telegram_id", telegramID)
	return nil
}

// DeactivateUser soft-deletes a profile.
func (s *Store) DeactivateUser(ctx context.Context, telegramID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE usuarios SET is_active = FALSE, updated_at = $2 WHERE telegram_id = $1`,
		telegramID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to deactivate user %s: %w", telegramID, err)
	}
	return nil
}

// UserExists reports whether an active profile exists. Lookup failures read
// as "does not exist".
func (s *Store) UserExists(ctx context.Context, telegramID string) bool {
	user, err := s.GetUserProfile(ctx, telegramID)
	return err == nil && user != nil
}

// CountActiveUsers returns the number of active profiles.
func (s *Store) CountActiveUsers(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM usuarios WHERE is_active = TRUE`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// AddQueryLog appends one invocation record. Entries are never mutated or
// deleted; they exist to compute same-day counts.
func (s *Store) AddQueryLog(ctx context.Context, telegramID, queryType, status string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO query_logs (telegram_id, query_type, timestamp, status)
		VALUES ($1, $2, $3, $4)`,
		telegramID, queryType, time.Now().UTC(), status)
	if err != nil {
		return fmt.Errorf("failed to log query for %s: %w", telegramID, err)
	}
	return nil
}

// CountQueriesToday counts the user's invocations since UTC midnight.
func (s *Store) CountQueriesToday(ctx context.Context, telegramID, queryType string) (int, error) {
	todayStart := time.Now().UTC().Truncate(24 * time.Hour)

	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM query_logs
		WHERE telegram_id = $1 AND query_type = $2 AND timestamp >= $3`,
		telegramID, queryType, todayStart).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count queries for %s: %w", telegramID, err)
	}

	return count, nil
}

// nullable maps "" to NULL for optional text columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
