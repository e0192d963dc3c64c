package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"studyhub/internal/model"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Insert(ctx context.Context, session *model.StudySession) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO study_sessions (id, user_id, duration_seconds, completed_at, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		session.DurationSeconds,
		formatSortable(session.CompletedAt),
		formatSortable(session.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert study session: %w", err)
	}
	return nil
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.StudySession, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, user_id, duration_seconds, completed_at, created_at
		 FROM study_sessions
		 WHERE user_id = ?
		 ORDER BY completed_at DESC
		 LIMIT ?`,
		userID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list study sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]model.StudySession, 0, limit)
	for rows.Next() {
		session, scanErr := scanStudySession(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate study sessions: %w", err)
	}
	return sessions, nil
}

// Totals returns the number of sessions and summed focus seconds completed
// by userID at or after since.
func (r *SessionRepository) Totals(ctx context.Context, userID string, since time.Time) (int, int, error) {
	var count, seconds int
	err := r.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1), COALESCE(SUM(duration_seconds), 0)
		 FROM study_sessions
		 WHERE user_id = ? AND completed_at >= ?`,
		userID,
		formatSortable(since),
	).Scan(&count, &seconds)
	if err != nil {
		return 0, 0, fmt.Errorf("sum study sessions: %w", err)
	}
	return count, seconds, nil
}

// ActiveDays lists the distinct UTC dates (YYYY-MM-DD) with at least one
// completed session, newest first.
func (r *SessionRepository) ActiveDays(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT DISTINCT substr(completed_at, 1, 10) AS day
		 FROM study_sessions
		 WHERE user_id = ?
		 ORDER BY day DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list active days: %w", err)
	}
	defer rows.Close()

	var days []string
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("scan active day: %w", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate active days: %w", err)
	}
	return days, nil
}

// Leaderboard ranks users by focus seconds completed at or after since.
func (r *SessionRepository) Leaderboard(ctx context.Context, since time.Time, limit int) ([]model.LeaderboardEntry, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT u.id, u.display_name, COUNT(s.id), COALESCE(SUM(s.duration_seconds), 0) AS total
		 FROM study_sessions s
		 JOIN users u ON u.id = s.user_id
		 WHERE s.completed_at >= ?
		 GROUP BY u.id, u.display_name
		 ORDER BY total DESC, COUNT(s.id) DESC, u.display_name ASC
		 LIMIT ?`,
		formatSortable(since),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]model.LeaderboardEntry, 0, limit)
	for rows.Next() {
		var entry model.LeaderboardEntry
		if err := rows.Scan(&entry.UserID, &entry.DisplayName, &entry.Sessions, &entry.FocusSeconds); err != nil {
			return nil, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		entry.Rank = len(entries) + 1
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard: %w", err)
	}
	return entries, nil
}

func scanStudySession(s scanner) (*model.StudySession, error) {
	session := model.StudySession{}
	var completedAt string
	var createdAt string
	err := s.Scan(
		&session.ID,
		&session.UserID,
		&session.DurationSeconds,
		&completedAt,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan study session: %w", err)
	}

	parsedCompletedAt, err := parseTime(completedAt)
	if err != nil {
		return nil, fmt.Errorf("parse session completed_at: %w", err)
	}
	session.CompletedAt = parsedCompletedAt

	parsedCreatedAt, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse session created_at: %w", err)
	}
	session.CreatedAt = parsedCreatedAt
	return &session, nil
}
