package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const defaultAPIURL = "http://localhost:8080"

const tokenFileName = ".jobwatch_token"

// APIURL returns the base URL for the jobwatch API.
// It can be overridden with the JOBWATCH_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("JOBWATCH_API_URL"); v != "" {
		return v
	}
	return defaultAPIURL
}

// Token returns the bearer token for API calls. JOBWATCH_TOKEN wins;
// otherwise the token file in the home directory is read. Token issuance
// happens outside this CLI.
func Token() (string, error) {
	if v := os.Getenv("JOBWATCH_TOKEN"); v != "" {
		return v, nil
	}
	data, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", fmt.Errorf("no token: set JOBWATCH_TOKEN or write %s", tokenPath())
	}
	return strings.TrimSpace(string(data)), nil
}

// SaveToken stores a bearer token in the home directory for later calls.
func SaveToken(token string) error {
	return os.WriteFile(tokenPath(), []byte(token), 0600)
}

func tokenPath() string {
	dir, _ := os.UserHomeDir()
	return filepath.Join(dir, tokenFileName)
}
