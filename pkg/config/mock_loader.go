package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/fautty/fautty/pkg/mock"
)

// SeedFile holds the contents of one seed mock file, which may be a single
// registration or a list of them.
type SeedFile struct {
	Mocks []mock.Registration
}

// UnmarshalYAML accepts a mapping or a sequence of mappings.
func (s *SeedFile) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		return node.Decode(&s.Mocks)
	}
	var reg mock.Registration
	if err := node.Decode(&reg); err != nil {
		return err
	}
	s.Mocks = []mock.Registration{reg}
	return nil
}

// UnmarshalJSON accepts an object or an array of objects.
func (s *SeedFile) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		return json.Unmarshal(data, &s.Mocks)
	}
	var reg mock.Registration
	if err := json.Unmarshal(data, &reg); err != nil {
		return err
	}
	s.Mocks = []mock.Registration{reg}
	return nil
}

// LoadSeedMocks expands each pattern against baseDir and parses every matching
// file. Files are read in pattern order, then lexical order within a pattern.
// Each registration is validated; a pattern with no matches is not an error.
func LoadSeedMocks(patterns []string, baseDir string) ([]mock.Registration, error) {
	var result []mock.Registration
	for i, pattern := range patterns {
		matches, err := expandGlob(ResolvePath(baseDir, pattern))
		if err != nil {
			return nil, fmt.Errorf("mocks[%d] (%s): expanding glob pattern: %w", i, pattern, err)
		}
		sort.Strings(matches)

		for _, match := range matches {
			regs, err := loadSeedFile(match)
			if err != nil {
				relPath, relErr := filepath.Rel(baseDir, match)
				if relErr != nil {
					relPath = match
				}
				return nil, fmt.Errorf("loading %s: %w", relPath, err)
			}
			result = append(result, regs...)
		}
	}
	return result, nil
}

func loadSeedFile(path string) ([]mock.Registration, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	expanded := []byte(ExpandEnvVars(string(data)))

	var seed SeedFile
	if isYAML(path) {
		if err := yaml.Unmarshal(expanded, &seed); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
		}
	} else {
		if !json.Valid(expanded) {
			return nil, ErrInvalidJSON
		}
		if err := json.Unmarshal(expanded, &seed); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	}

	for i := range seed.Mocks {
		if err := seed.Mocks[i].Validate(); err != nil {
			return nil, fmt.Errorf("mock %d: %w", i, err)
		}
	}
	return seed.Mocks, nil
}

// expandGlob uses doublestar when the pattern needs ** and filepath.Glob otherwise.
func expandGlob(pattern string) ([]string, error) {
	if strings.Contains(pattern, "**") {
		return doublestar.FilepathGlob(pattern)
	}
	return filepath.Glob(pattern)
}
