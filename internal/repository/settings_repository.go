package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"studyhub/internal/model"
	"studyhub/internal/timer"
)

type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Upsert stores the settings row for settings.UserID, replacing any
// previous values.
func (r *SettingsRepository) Upsert(ctx context.Context, settings *model.TimerSettings) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO timer_settings (
			user_id, focus_seconds, short_break_seconds, long_break_seconds,
			long_break_interval, auto_start_breaks, auto_start_focus, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			focus_seconds = excluded.focus_seconds,
			short_break_seconds = excluded.short_break_seconds,
			long_break_seconds = excluded.long_break_seconds,
			long_break_interval = excluded.long_break_interval,
			auto_start_breaks = excluded.auto_start_breaks,
			auto_start_focus = excluded.auto_start_focus,
			updated_at = excluded.updated_at`,
		settings.UserID,
		settings.FocusSeconds,
		settings.ShortBreakSeconds,
		settings.LongBreakSeconds,
		settings.LongBreakInterval,
		boolToInt(settings.AutoStartBreaks),
		boolToInt(settings.AutoStartFocus),
		settings.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert timer settings: %w", err)
	}
	return nil
}

func (r *SettingsRepository) Get(ctx context.Context, userID string) (*model.TimerSettings, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT user_id, focus_seconds, short_break_seconds, long_break_seconds,
		        long_break_interval, auto_start_breaks, auto_start_focus, updated_at
		 FROM timer_settings WHERE user_id = ?`,
		userID,
	)

	settings := model.TimerSettings{}
	var autoBreaks, autoFocus int
	var updatedAt string
	err := row.Scan(
		&settings.UserID,
		&settings.FocusSeconds,
		&settings.ShortBreakSeconds,
		&settings.LongBreakSeconds,
		&settings.LongBreakInterval,
		&autoBreaks,
		&autoFocus,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan timer settings: %w", err)
	}
	settings.AutoStartBreaks = autoBreaks != 0
	settings.AutoStartFocus = autoFocus != 0

	parsedUpdatedAt, err := parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse timer settings updated_at: %w", err)
	}
	settings.UpdatedAt = parsedUpdatedAt
	return &settings, nil
}

// GetOrDefault returns the stored settings, or fallback when the user has
// none yet.
func (r *SettingsRepository) GetOrDefault(ctx context.Context, userID string, fallback timer.Settings) (timer.Settings, error) {
	stored, err := r.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return timer.Settings{}, err
	}
	return stored.Settings, nil
}
