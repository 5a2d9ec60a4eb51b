package utils

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// LoadEnv loads environment variables from multiple .env files
// Returns a map of environment variables. Variables already present in the
// process environment are never overwritten by a file
func LoadEnv(files ...string) map[string]string {
	config := make(map[string]string)

	// Load each file in order, skipping the ones that don't exist
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}

		if err := godotenv.Load(file); err != nil {
			logrus.Warnf("[UTILS]: could not load %s: %v", file, err)
		}
	}

	// Read all environment variables into map
	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if ok && key != "" {
			config[key] = value
		}
	}

	return config
}

// EnvFile returns the .env file to load, honoring ENV_FILE
func EnvFile() string {
	if file := os.Getenv("ENV_FILE"); file != "" {
		return file
	}
	return ".env"
}
