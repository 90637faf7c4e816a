package config

import "github.com/joho/godotenv"

// LoadDotEnv loads environment variables from .env files if present.
// Missing files are ignored and existing variables are not overridden.
func LoadDotEnv() {
	// godotenv.Load(a, b) stops on the first missing file, so try separately.
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")
}
