package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadRequiresUser(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `projects: []`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load() with missing user should error")
	}
}

func TestLoadDateFieldRegexDefault(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `user: octocat`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.DateFieldRegex != "start" {
		t.Errorf("DateFieldRegex = %q, want %q", cfg.DateFieldRegex, "start")
	}
}

func TestLoadDateFieldNamesCompileAnchoredAlternation(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
user: octocat
date_field_names:
  - "Start date"
  - "Focus Day"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := `^Start date$|^Focus Day$`
	if cfg.DateFieldRegex != want {
		t.Errorf("DateFieldRegex = %q, want %q", cfg.DateFieldRegex, want)
	}
}

func TestLoadProjectsOrgWithExplicitNumbers(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
user: octocat
projects:
  - org: acme
    numbers: [1, 2, 3]
  - user: octocat
    numbers: all
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cfg.Projects) != 2 {
		t.Fatalf("Projects = %d entries, want 2", len(cfg.Projects))
	}
	if cfg.Projects[0].OwnerType != "org" || cfg.Projects[0].Owner != "acme" {
		t.Errorf("Projects[0] = %+v", cfg.Projects[0])
	}
	if len(cfg.Projects[0].Numbers) != 3 || cfg.Projects[0].All {
		t.Errorf("Projects[0].Numbers = %v, All=%v", cfg.Projects[0].Numbers, cfg.Projects[0].All)
	}
	if !cfg.Projects[1].All {
		t.Errorf("Projects[1].All = false, want true for numbers: all")
	}
}

func TestLoadProjectEntryRequiresOrgOrUser(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
user: octocat
projects:
  - numbers: all
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load() should error when project entry has neither org nor user")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "user: [unterminated")
	if _, err := Load(path); err == nil {
		t.Fatal("Load() with invalid YAML should error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Load() with missing file should error")
	}
}
