package main

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// loadDotEnv looks for a .env file in the working directory and the
// executable's own directory (spec.md §6's "loaded from a .env file in the
// current or executable directory"), populating any variable it defines
// that isn't already set in the process environment. No third-party .env
// library appears anywhere in the example pack for this concern, so this
// loader is hand-rolled.
func loadDotEnv() {
	candidates := []string{".env"}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), ".env"))
	}
	for _, path := range candidates {
		applyDotEnv(path)
	}
}

func applyDotEnv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if key == "" {
			continue
		}
		if _, set := os.LookupEnv(key); !set {
			os.Setenv(key, value)
		}
	}
}

// resolveToken returns the bearer token from GITHUB_TOKEN, falling back to
// TOKEN (spec.md §6), after loading any .env file.
func resolveToken() string {
	loadDotEnv()
	if t := os.Getenv("GITHUB_TOKEN"); t != "" {
		return t
	}
	return os.Getenv("TOKEN")
}
