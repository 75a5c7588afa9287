// This file contains utilities for loading seed users from file
// references and globs.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/getuserd/userd/pkg/directory"
)

// SeedEntry represents either inline seed users, a file reference, or a
// glob pattern. Only one of Users, File, or Files should be set.
type SeedEntry struct {
	// Users lists seed users directly.
	Users []directory.SeedUser `json:"users,omitempty" yaml:"users,omitempty"`

	// File loads seed users from a single YAML file.
	File string `json:"file,omitempty" yaml:"file,omitempty"`

	// Files loads seed users from all files matching a glob pattern.
	Files string `json:"files,omitempty" yaml:"files,omitempty"`
}

// IsInline returns true if this entry lists users directly.
func (s SeedEntry) IsInline() bool {
	return len(s.Users) > 0
}

// IsFileRef returns true if this is a single file reference.
func (s SeedEntry) IsFileRef() bool {
	return s.File != ""
}

// IsGlob returns true if this is a glob pattern for multiple files.
func (s SeedEntry) IsGlob() bool {
	return s.Files != ""
}

// seedFileContent represents the possible contents of a seed file.
// A seed file can contain either a single user or an array of users.
type seedFileContent struct {
	Name  string `yaml:"name,omitempty"`
	Email string `yaml:"email,omitempty"`

	// Populated by custom unmarshaling when the file holds an array.
	users []seedFileContent
}

// UnmarshalYAML handles both single user and array of users formats.
func (s *seedFileContent) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var users []seedFileContent
		if err := node.Decode(&users); err != nil {
			return err
		}
		s.users = users
		return nil
	}

	// Unmarshal as a single user using an alias to avoid recursion.
	type seedFileContentAlias seedFileContent
	alias := (*seedFileContentAlias)(s)
	return node.Decode(alias)
}

func (s *seedFileContent) toSeedUser() directory.SeedUser {
	return directory.SeedUser{Name: s.Name, Email: s.Email}
}

// LoadSeedsFromEntry loads seed users from a SeedEntry.
// For inline entries, it returns the users as-is. For file references, it
// loads and parses the YAML file. For globs, it expands the pattern and
// loads all matching files. The baseDir is used to resolve relative paths.
func LoadSeedsFromEntry(entry SeedEntry, baseDir string) ([]directory.SeedUser, error) {
	switch {
	case entry.IsInline():
		return entry.Users, nil
	case entry.IsFileRef():
		return loadSeedsFromFile(entry.File, baseDir)
	case entry.IsGlob():
		return loadSeedsFromGlob(entry.Files, baseDir)
	default:
		return nil, errors.New("invalid seed entry: no users, file, or files specified")
	}
}

// LoadAllSeeds loads all seed users from a slice of SeedEntry, expanding
// file references and globs into a flat slice.
func LoadAllSeeds(entries []SeedEntry, baseDir string) ([]directory.SeedUser, error) {
	var result []directory.SeedUser

	for i, entry := range entries {
		users, err := LoadSeedsFromEntry(entry, baseDir)
		if err != nil {
			if entry.IsFileRef() {
				return nil, fmt.Errorf("seed[%d] (file: %s): %w", i, entry.File, err)
			}
			if entry.IsGlob() {
				return nil, fmt.Errorf("seed[%d] (files: %s): %w", i, entry.Files, err)
			}
			return nil, fmt.Errorf("seed[%d]: %w", i, err)
		}
		result = append(result, users...)
	}

	return result, nil
}

// loadSeedsFromFile loads seed users from a single YAML file.
func loadSeedsFromFile(filePath, baseDir string) ([]directory.SeedUser, error) {
	resolvedPath := ResolvePath(baseDir, filePath)

	data, err := os.ReadFile(resolvedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", resolvedPath)
		}
		return nil, fmt.Errorf("reading file: %w", err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("file is empty: %s", resolvedPath)
	}

	expanded := ExpandEnvVars(string(data))

	var content seedFileContent
	if err := yaml.Unmarshal([]byte(expanded), &content); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	if len(content.users) > 0 {
		users := make([]directory.SeedUser, len(content.users))
		for i, u := range content.users {
			users[i] = u.toSeedUser()
		}
		return users, nil
	}

	if content.Name == "" && content.Email == "" {
		return nil, fmt.Errorf("invalid seed file: missing 'name' or 'email' field: %s", resolvedPath)
	}

	return []directory.SeedUser{content.toSeedUser()}, nil
}

// loadSeedsFromGlob loads seed users from files matching a glob pattern.
// Supports ** for recursive directory matching via the doublestar library.
func loadSeedsFromGlob(pattern, baseDir string) ([]directory.SeedUser, error) {
	resolvedPattern := ResolvePath(baseDir, pattern)

	matches, err := expandGlob(resolvedPattern)
	if err != nil {
		return nil, fmt.Errorf("expanding glob pattern: %w", err)
	}

	if len(matches) == 0 {
		// Not an error, just no matches.
		return []directory.SeedUser{}, nil
	}

	// Sort matches for deterministic ordering.
	sort.Strings(matches)

	var result []directory.SeedUser
	for _, match := range matches {
		relPath, _ := filepath.Rel(baseDir, match)
		if relPath == "" {
			relPath = match
		}

		users, err := loadSeedsFromFile(match, "")
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", relPath, err)
		}
		result = append(result, users...)
	}

	return result, nil
}

// expandGlob expands a glob pattern to matching file paths. Uses
// doublestar for ** support, falls back to filepath.Glob otherwise.
func expandGlob(pattern string) ([]string, error) {
	if strings.Contains(pattern, "**") {
		return doublestar.FilepathGlob(pattern)
	}
	return filepath.Glob(pattern)
}
