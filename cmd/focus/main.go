package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/user"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"studyhub/internal/config"
	"studyhub/internal/db"
	"studyhub/internal/model"
	"studyhub/internal/repository"
	"studyhub/internal/service"
	"studyhub/internal/timer"
	"studyhub/internal/tui"
	"studyhub/migrations"
)

const (
	appName     = "studyhub"
	localUserID = "local"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "focus: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	defaultConfig, err := config.DefaultTimerDefaultsPath(appName)
	if err != nil {
		return err
	}
	dataDir := filepath.Dir(defaultConfig)

	configPath := flag.String("config", defaultConfig, "timer settings YAML file, reloaded on change")
	dbPath := flag.String("db", filepath.Join(dataDir, "focus.db"), "SQLite database for completed sessions")
	logPath := flag.String("log", filepath.Join(dataDir, "focus.log"), "log file")
	flag.Parse()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("an interactive terminal is required")
	}

	if err := os.MkdirAll(filepath.Dir(*logPath), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	logFile, err := tea.LogToFile(*logPath, "focus")
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logFile.Close()

	settings, err := loadOrCreateSettings(*configPath)
	if err != nil {
		return err
	}
	feed := timer.NewSettingsFeed(settings)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := config.WatchTimerDefaults(ctx, *configPath, feed); err != nil {
		log.Printf("settings will not reload: %v", err)
	}

	database, err := db.OpenSQLite(*dbPath)
	if err != nil {
		return err
	}
	defer database.Close()
	if _, err := db.RunMigrationsFS(database, migrations.Files); err != nil {
		return err
	}
	if err := ensureLocalUser(ctx, repository.NewUserRepository(database)); err != nil {
		return err
	}

	writer := service.NewSessionWriter(repository.NewSessionRepository(database), 16, nil)
	defer writer.Close()

	path := *configPath
	program := tea.NewProgram(tui.New(tui.Options{
		Settings: feed,
		Recorder: writer.RecorderFor(localUserID),
		SaveSettings: func(s timer.Settings) error {
			return config.SaveTimerDefaults(path, s)
		},
	}), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run terminal view: %w", err)
	}
	return nil
}

// loadOrCreateSettings reads path, writing the defaults there first when the
// file does not exist so it can be edited.
func loadOrCreateSettings(path string) (timer.Settings, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := config.SaveTimerDefaults(path, timer.DefaultSettings()); err != nil {
			return timer.Settings{}, err
		}
	}
	settings, err := config.LoadTimerDefaults(path)
	if err != nil {
		return timer.Settings{}, err
	}
	if err := settings.Validate(); err != nil {
		return timer.Settings{}, fmt.Errorf("settings in %s: %w", path, err)
	}
	return settings, nil
}

func ensureLocalUser(ctx context.Context, users *repository.UserRepository) error {
	name := "me"
	if current, err := user.Current(); err == nil && current.Username != "" {
		name = current.Username
	}
	now := time.Now().UTC()
	return users.EnsureUser(ctx, &model.User{
		ID:          localUserID,
		Email:       localUserID + "@localhost",
		DisplayName: name,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}
