package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"studyhub/internal/model"
	"studyhub/internal/repository"
	"studyhub/internal/testutil"
)

func createUser(t *testing.T, repo *repository.UserRepository, email, displayName string) model.User {
	t.Helper()
	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: "unused",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repo.Create(context.Background(), &user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func insertSession(t *testing.T, repo *repository.SessionRepository, userID string, seconds int, completedAt time.Time) {
	t.Helper()
	session := model.StudySession{
		ID:              uuid.NewString(),
		UserID:          userID,
		DurationSeconds: seconds,
		CompletedAt:     completedAt,
		CreatedAt:       completedAt,
	}
	if err := repo.Insert(context.Background(), &session); err != nil {
		t.Fatalf("insert session: %v", err)
	}
}

type repos struct {
	users    *repository.UserRepository
	settings *repository.SettingsRepository
	sessions *repository.SessionRepository
}

func openRepos(t *testing.T) repos {
	t.Helper()
	database := testutil.OpenDB(t)
	return repos{
		users:    repository.NewUserRepository(database),
		settings: repository.NewSettingsRepository(database),
		sessions: repository.NewSessionRepository(database),
	}
}
