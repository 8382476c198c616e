package main

import (
	"os"
	"path/filepath"
	"testing"
)

func withEnv(t *testing.T, key, value string) {
	t.Helper()
	prev, had := os.LookupEnv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if had {
			os.Setenv(key, prev)
		} else {
			os.Unsetenv(key)
		}
	})
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	prev, had := os.LookupEnv(key)
	os.Unsetenv(key)
	t.Cleanup(func() {
		if had {
			os.Setenv(key, prev)
		}
	})
}

func TestApplyDotEnvSetsUnsetVariables(t *testing.T) {
	unsetEnv(t, "GHBOARD_TEST_VAR")
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# a comment\n\nGHBOARD_TEST_VAR=hello world\nQUOTED=\"with quotes\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	unsetEnv(t, "QUOTED")

	applyDotEnv(path)

	if got := os.Getenv("GHBOARD_TEST_VAR"); got != "hello world" {
		t.Fatalf("GHBOARD_TEST_VAR = %q, want %q", got, "hello world")
	}
	if got := os.Getenv("QUOTED"); got != "with quotes" {
		t.Fatalf("QUOTED = %q, want %q (quotes stripped)", got, "with quotes")
	}
}

func TestApplyDotEnvDoesNotOverrideExistingEnv(t *testing.T) {
	withEnv(t, "GHBOARD_TEST_EXISTING", "process-value")
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("GHBOARD_TEST_EXISTING=dotenv-value\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	applyDotEnv(path)

	if got := os.Getenv("GHBOARD_TEST_EXISTING"); got != "process-value" {
		t.Fatalf("existing env var overwritten: got %q, want %q", got, "process-value")
	}
}

func TestApplyDotEnvMissingFileIsNoop(t *testing.T) {
	// Should not panic or error when the file doesn't exist.
	applyDotEnv(filepath.Join(t.TempDir(), "does-not-exist.env"))
}

func TestResolveTokenPrefersGithubToken(t *testing.T) {
	withEnv(t, "GITHUB_TOKEN", "gh-token")
	withEnv(t, "TOKEN", "plain-token")

	if got := resolveToken(); got != "gh-token" {
		t.Fatalf("resolveToken() = %q, want %q", got, "gh-token")
	}
}

func TestResolveTokenFallsBackToToken(t *testing.T) {
	unsetEnv(t, "GITHUB_TOKEN")
	withEnv(t, "TOKEN", "plain-token")

	if got := resolveToken(); got != "plain-token" {
		t.Fatalf("resolveToken() = %q, want %q", got, "plain-token")
	}
}
