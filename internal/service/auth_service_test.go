package service_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"studyhub/internal/service"
	"studyhub/internal/timer"
)

func newAuthService(t *testing.T) (*service.AuthService, repos) {
	t.Helper()
	r := openRepos(t)
	defaults := timer.DefaultSettings()
	defaults.FocusSeconds = 50 * 60
	return service.NewAuthService(r.users, r.settings, timer.NewSettingsFeed(defaults), "test-secret", time.Hour), r
}

func TestRegisterCreatesUserAndSettings(t *testing.T) {
	ctx := context.Background()
	auth, r := newAuthService(t)

	result, apiErr := auth.Register(ctx, service.RegisterInput{
		Email:    "  New.User@Example.com ",
		Password: "secret1",
	})
	if apiErr != nil {
		t.Fatalf("register: %v", apiErr)
	}
	if result.User.Email != "new.user@example.com" || result.User.DisplayName != "new.user" {
		t.Fatalf("unexpected user %+v", result.User)
	}
	if result.User.PasswordHash != "" {
		t.Fatal("password hash must not be returned")
	}

	settings, err := r.settings.Get(ctx, result.User.ID)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if settings.FocusSeconds != 50*60 {
		t.Fatalf("expected configured defaults, got %+v", settings.Settings)
	}

	userID, apiErr := auth.ParseToken(result.Token)
	if apiErr != nil || userID != result.User.ID {
		t.Fatalf("token subject %q, err %v", userID, apiErr)
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuthService(t)

	cases := []struct {
		input service.RegisterInput
		code  string
	}{
		{input: service.RegisterInput{Email: "", Password: "secret1"}, code: "invalid_email"},
		{input: service.RegisterInput{Email: "not-an-email", Password: "secret1"}, code: "invalid_email"},
		{input: service.RegisterInput{Email: "a@example.com", Password: "123"}, code: "invalid_password"},
		{
			input: service.RegisterInput{Email: "a@example.com", Password: "secret1", DisplayName: "this display name is far too long to show anywhere"},
			code:  "invalid_display_name",
		},
	}
	for _, tc := range cases {
		_, apiErr := auth.Register(ctx, tc.input)
		if apiErr == nil || apiErr.Code != tc.code {
			t.Fatalf("%+v: expected %s, got %v", tc.input, tc.code, apiErr)
		}
	}

	if _, apiErr := auth.Register(ctx, service.RegisterInput{Email: "dup@example.com", Password: "secret1"}); apiErr != nil {
		t.Fatalf("register: %v", apiErr)
	}
	_, apiErr := auth.Register(ctx, service.RegisterInput{Email: "DUP@example.com", Password: "secret1"})
	if apiErr == nil || apiErr.Status != http.StatusConflict {
		t.Fatalf("expected conflict, got %v", apiErr)
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuthService(t)
	if _, apiErr := auth.Register(ctx, service.RegisterInput{Email: "login@example.com", Password: "secret1", DisplayName: "Login"}); apiErr != nil {
		t.Fatalf("register: %v", apiErr)
	}

	result, apiErr := auth.Login(ctx, "LOGIN@example.com", "secret1")
	if apiErr != nil {
		t.Fatalf("login: %v", apiErr)
	}
	if result.User.DisplayName != "Login" || result.Token == "" {
		t.Fatalf("unexpected login result %+v", result)
	}

	for _, password := range []string{"wrong-password", ""} {
		if _, apiErr := auth.Login(ctx, "login@example.com", password); apiErr == nil {
			t.Fatalf("password %q must be rejected", password)
		}
	}
	if _, apiErr := auth.Login(ctx, "nobody@example.com", "secret1"); apiErr == nil || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown user, got %v", apiErr)
	}

	if _, apiErr := auth.ParseToken("garbage"); apiErr == nil {
		t.Fatal("expected invalid token error")
	}
}
