package service

import (
	"context"
	"errors"
	"io"
	"time"

	apperrors "studyhub/internal/errors"
	"studyhub/internal/model"
	"studyhub/internal/report"
	"studyhub/internal/repository"
)

const (
	defaultHistoryLimit     = 50
	maxHistoryLimit         = 200
	defaultLeaderboardDays  = 7
	maxLeaderboardDays      = 365
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
	reportSessionLimit      = 100
	dayLayout               = "2006-01-02"
)

type StatsService struct {
	sessionRepo *repository.SessionRepository
	userRepo    *repository.UserRepository
	now         func() time.Time
}

func NewStatsService(sessionRepo *repository.SessionRepository, userRepo *repository.UserRepository, now func() time.Time) *StatsService {
	if now == nil {
		now = time.Now
	}
	return &StatsService{sessionRepo: sessionRepo, userRepo: userRepo, now: now}
}

func (s *StatsService) History(ctx context.Context, userID string, limit int) ([]model.StudySession, *apperrors.APIError) {
	if limit <= 0 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}
	sessions, err := s.sessionRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.Internal("failed to get history")
	}
	return sessions, nil
}

// Stats aggregates the user's sessions. Days are UTC calendar days.
func (s *StatsService) Stats(ctx context.Context, userID string) (*model.StudyStats, *apperrors.APIError) {
	now := s.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var stats model.StudyStats
	var err error
	stats.TotalSessions, stats.TotalFocusSeconds, err = s.sessionRepo.Totals(ctx, userID, time.Time{})
	if err != nil {
		return nil, apperrors.Internal("failed to get stats")
	}
	stats.SessionsToday, stats.FocusSecondsToday, err = s.sessionRepo.Totals(ctx, userID, midnight)
	if err != nil {
		return nil, apperrors.Internal("failed to get stats")
	}

	days, err := s.sessionRepo.ActiveDays(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to get stats")
	}
	stats.CurrentStreakDays, stats.LongestStreakDays = streaks(days, midnight)
	return &stats, nil
}

func (s *StatsService) Leaderboard(ctx context.Context, days, limit int) ([]model.LeaderboardEntry, *apperrors.APIError) {
	if days <= 0 || days > maxLeaderboardDays {
		days = defaultLeaderboardDays
	}
	if limit <= 0 || limit > maxLeaderboardLimit {
		limit = defaultLeaderboardLimit
	}
	since := s.now().UTC().AddDate(0, 0, -days)
	entries, err := s.sessionRepo.Leaderboard(ctx, since, limit)
	if err != nil {
		return nil, apperrors.Internal("failed to get leaderboard")
	}
	return entries, nil
}

// Report writes a PDF summary of the user's study history to w.
func (s *StatsService) Report(ctx context.Context, userID string, w io.Writer) *apperrors.APIError {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("user_not_found", "user not found")
	}
	if err != nil {
		return apperrors.Internal("failed to load user")
	}

	stats, apiErr := s.Stats(ctx, userID)
	if apiErr != nil {
		return apiErr
	}
	sessions, err := s.sessionRepo.ListByUser(ctx, userID, reportSessionLimit)
	if err != nil {
		return apperrors.Internal("failed to get history")
	}

	owner := user.DisplayName
	if owner == "" {
		owner = user.Email
	}
	if err := report.Render(w, report.StudyReport{
		Owner:       owner,
		GeneratedAt: s.now(),
		Stats:       *stats,
		Sessions:    sessions,
	}); err != nil {
		return apperrors.Internal("failed to render report")
	}
	return nil
}

// streaks computes the current and longest runs of consecutive active days.
// days must be distinct YYYY-MM-DD values, newest first. The current streak
// counts back from today, or from yesterday when nothing is recorded today.
func streaks(days []string, today time.Time) (current, longest int) {
	parsed := make([]time.Time, 0, len(days))
	for _, raw := range days {
		day, err := time.Parse(dayLayout, raw)
		if err != nil {
			continue
		}
		parsed = append(parsed, day)
	}

	run := 0
	for i, day := range parsed {
		if i > 0 && parsed[i-1].AddDate(0, 0, -1).Equal(day) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
		// still inside the newest run
		if i == run-1 {
			current = run
		}
	}
	if len(parsed) > 0 && today.Sub(parsed[0]) > 24*time.Hour {
		current = 0
	}
	return current, longest
}
