package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Akankshas1102/amazondvc-admin/internal/console/cli"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	baseURL := os.Getenv("CONSOLE_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:7070"
	}

	sessionPath := os.Getenv("CONSOLE_SESSION_FILE")
	if sessionPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		sessionPath = filepath.Join(home, ".amazondvc", "session.json")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(baseURL, sessionPath)
	app.Run(ctx)
}
