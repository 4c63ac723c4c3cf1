package config

import (
	"os"

	"github.com/joho/godotenv"
)

// dotEnvFiles in priority order; godotenv never overwrites a variable that is
// already set, so the process environment wins, then .env.local, then .env.
var dotEnvFiles = []string{".env.local", ".env"}

// LoadDotEnv loads the dotenv files that exist and returns their names
func LoadDotEnv() []string {
	var loaded []string
	for _, f := range dotEnvFiles {
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) > 0 {
		_ = godotenv.Load(loaded...)
	}
	return loaded
}
