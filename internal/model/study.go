package model

import (
	"time"

	"studyhub/internal/timer"
)

type TimerSettings struct {
	UserID string `json:"userId"`
	timer.Settings
	UpdatedAt time.Time `json:"updatedAt"`
}

// StudySession is one completed focus interval.
type StudySession struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	DurationSeconds int       `json:"durationSeconds"`
	CompletedAt     time.Time `json:"completedAt"`
	CreatedAt       time.Time `json:"createdAt"`
}

type StudyStats struct {
	TotalSessions     int `json:"totalSessions"`
	TotalFocusSeconds int `json:"totalFocusSeconds"`
	SessionsToday     int `json:"sessionsToday"`
	FocusSecondsToday int `json:"focusSecondsToday"`
	CurrentStreakDays int `json:"currentStreakDays"`
	LongestStreakDays int `json:"longestStreakDays"`
}

type LeaderboardEntry struct {
	Rank         int    `json:"rank"`
	UserID       string `json:"-"`
	DisplayName  string `json:"displayName"`
	Sessions     int    `json:"sessions"`
	FocusSeconds int    `json:"focusSeconds"`
}
