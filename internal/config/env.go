package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads .env into the process environment. It reports whether a
// file was found; without one the system environment is used as is.
func LoadEnv(paths ...string) bool {
	if err := godotenv.Load(paths...); err != nil {
		return false
	}
	return true
}

func GetEnv(key string, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}
