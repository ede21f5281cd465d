package config

import (
	"errors"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// envFiles are tried in order; the first readable one wins. Variables that
// are already set in the process environment are not overridden.
var envFiles = []string{".env", ".env.local"}

func loadEnvFile() error {
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return err
		}
		slog.Debug("Loaded environment variables", slog.String("file", path))
		return nil
	}
	return errors.New("no .env file found")
}
