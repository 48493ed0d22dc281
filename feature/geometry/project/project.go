package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// DatabaseSettings are the connection settings recorded in a project file.
// The password is never stored; it comes from flags or the prompt.
type DatabaseSettings struct {
	Driver string `json:"driver"`
	Host   string `json:"host"`
	Port   int    `json:"port"`
	Name   string `json:"name"`
	User   string `json:"user"`
}

// Project describes one monitoring project as recorded in a .ppr file.
type Project struct {
	Name     string           `json:"name"`
	Slug     string           `json:"slug"`
	Database DatabaseSettings `json:"database"`
}

// TablePrefix returns the project's geometry namespace prefix.
func (p *Project) TablePrefix() string {
	return p.Slug + "_"
}

// DiscoveryError reports a missing or ambiguous project file. Discovery
// failures abort before any store interaction.
type DiscoveryError struct {
	Dir        string
	Candidates []string
}

func (e *DiscoveryError) Error() string {
	if len(e.Candidates) == 0 {
		return fmt.Sprintf("no project file (*.ppr) found in %s", e.Dir)
	}
	return fmt.Sprintf("ambiguous project file in %s: %d candidates %v", e.Dir, len(e.Candidates), e.Candidates)
}

// slugPattern keeps slugs safe to use as a table-name prefix.
var slugPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Discover locates the project file: the unique *.ppr in dir. Zero or
// multiple candidates is a DiscoveryError.
func Discover(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.ppr"))
	if err != nil {
		return "", fmt.Errorf("failed to scan %s for project files: %w", dir, err)
	}
	if len(matches) != 1 {
		return "", &DiscoveryError{Dir: dir, Candidates: matches}
	}
	return matches[0], nil
}

// Load reads and validates a project file.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file %s: %w", path, err)
	}

	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse project file %s: %w", path, err)
	}

	if p.Name == "" {
		return nil, fmt.Errorf("project file %s: missing project name", path)
	}
	if !slugPattern.MatchString(p.Slug) {
		return nil, fmt.Errorf("project file %s: invalid slug %q", path, p.Slug)
	}
	return &p, nil
}
