// Package config loads the declarative YAML document describing which
// projects ghboard should track and how to recognize their date fields.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProjectSpec names one project owner to scan. All is true when the config
// requested "all" (or omitted numbers), meaning auto-discovery.
type ProjectSpec struct {
	OwnerType string // "org" or "user"
	Owner     string
	Numbers   []int
	All       bool
}

// Config is the parsed configuration document (spec.md §6).
type Config struct {
	User                string
	DateFieldRegex      string
	IterationFieldRegex string
	Projects            []ProjectSpec
}

// rawConfig mirrors the YAML document shape before compilation.
type rawConfig struct {
	User                string       `yaml:"user"`
	DateFieldRegex      string       `yaml:"date_field_regex"`
	DateFieldNames      []string     `yaml:"date_field_names"`
	IterationFieldRegex string       `yaml:"iteration_field_regex"`
	Projects            []rawProject `yaml:"projects"`
}

type rawProject struct {
	Org     string `yaml:"org"`
	User    string `yaml:"user"`
	Numbers any    `yaml:"numbers"`
}

// Load reads and parses the config document at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return fromRaw(raw)
}

func fromRaw(raw rawConfig) (*Config, error) {
	if strings.TrimSpace(raw.User) == "" {
		return nil, fmt.Errorf("config: 'user' is required")
	}

	cfg := &Config{
		User:                raw.User,
		DateFieldRegex:      compileDateRegex(raw),
		IterationFieldRegex: raw.IterationFieldRegex,
	}

	for _, item := range raw.Projects {
		spec := ProjectSpec{}
		switch {
		case item.Org != "":
			spec.OwnerType = "org"
			spec.Owner = item.Org
		case item.User != "":
			spec.OwnerType = "user"
			spec.Owner = item.User
		default:
			return nil, fmt.Errorf("config: project entry needs 'org' or 'user': %+v", item)
		}

		nums, all, err := parseNumbers(item.Numbers)
		if err != nil {
			return nil, fmt.Errorf("config: project %s: %w", spec.Owner, err)
		}
		spec.Numbers = nums
		spec.All = all
		cfg.Projects = append(cfg.Projects, spec)
	}

	if _, err := regexp.Compile(cfg.DateFieldRegex); err != nil {
		return nil, fmt.Errorf("config: invalid date_field_regex: %w", err)
	}
	if cfg.IterationFieldRegex != "" {
		if _, err := regexp.Compile(cfg.IterationFieldRegex); err != nil {
			return nil, fmt.Errorf("config: invalid iteration_field_regex: %w", err)
		}
	}

	return cfg, nil
}

// compileDateRegex supports date_field_regex (string) OR date_field_names
// (list of exact names, compiled to an anchored, escaped alternation),
// matching original_source/gh_task_viewer.py:_compile_date_regex.
func compileDateRegex(raw rawConfig) string {
	if len(raw.DateFieldNames) > 0 {
		parts := make([]string, 0, len(raw.DateFieldNames))
		for _, n := range raw.DateFieldNames {
			parts = append(parts, "^"+regexp.QuoteMeta(n)+"$")
		}
		return strings.Join(parts, "|")
	}
	if raw.DateFieldRegex != "" {
		return raw.DateFieldRegex
	}
	return "start"
}

// parseNumbers interprets the YAML "numbers" field: absent/nil or the
// literal string "all" means auto-discovery; otherwise a list of ints.
func parseNumbers(raw any) (nums []int, all bool, err error) {
	if raw == nil {
		return nil, true, nil
	}
	if s, ok := raw.(string); ok {
		if strings.EqualFold(s, "all") {
			return nil, true, nil
		}
		return nil, false, fmt.Errorf("numbers: unrecognized string %q", s)
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, false, fmt.Errorf("numbers: expected a list of ints or \"all\"")
	}
	for _, v := range list {
		switch n := v.(type) {
		case int:
			nums = append(nums, n)
		default:
			return nil, false, fmt.Errorf("numbers: expected int, got %T", v)
		}
	}
	return nums, false, nil
}
