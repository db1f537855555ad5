package models

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest lists statement files to preview in one CLI run.
type Manifest struct {
	Statements []StatementRef `yaml:"statements"`
}

// StatementRef points at a single statement file on disk.
type StatementRef struct {
	File      string `yaml:"file"`
	AccountID int64  `yaml:"account_id,omitempty"`
}

// Path returns the absolute path to the statement file, expanding ~.
func (s *StatementRef) Path() (string, error) {
	if strings.HasPrefix(s.File, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, s.File[2:]), nil
	}
	return s.File, nil
}

// ManifestFromFile reads a manifest from a YAML file.
func ManifestFromFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, err
	}
	return &manifest, nil
}
