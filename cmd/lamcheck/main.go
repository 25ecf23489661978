package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/atomb/lean-auto/cmd/lamcheck/commands"
	"github.com/joho/godotenv"
)

func main() {
	envfile := ".env"
	if os.Getenv("LAMCHECK_ENV") == "dev" {
		envfile = ".env.dev"
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		slog.SetDefault(logger)
	}
	if err := godotenv.Load(envfile); err == nil {
		log.Println("loaded env file:", envfile)
	}
	commands.Execute()
}
