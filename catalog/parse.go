package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	"defesadigital-backend/models"

	"github.com/goccy/go-yaml"
)

var ErrMalformedTemplate = errors.New("malformed defense template")

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

var validDifficulties = map[models.Difficulty]bool{
	models.DifficultyBasic:        true,
	models.DifficultyIntermediate: true,
	models.DifficultyAdvanced:     true,
}

// ParseTemplate parses one YAML template document into a DefenseTemplate.
// Parsing is deterministic and fails fast: a template missing any canonical
// section, using an unknown difficulty, or referencing a placeholder the
// field mapper cannot resolve is rejected here, not at request time.
func ParseTemplate(data []byte, source string) (*models.DefenseTemplate, error) {
	var tmpl models.DefenseTemplate
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedTemplate, source, err)
	}

	if tmpl.ID == "" {
		return nil, fmt.Errorf("%w: %s: missing template id", ErrMalformedTemplate, source)
	}
	if tmpl.Category == "" {
		return nil, fmt.Errorf("%w: %s: missing category", ErrMalformedTemplate, source)
	}
	if tmpl.Difficulty == "" {
		tmpl.Difficulty = models.DifficultyBasic
	}
	if !validDifficulties[tmpl.Difficulty] {
		return nil, fmt.Errorf("%w: %s: unknown difficulty %q", ErrMalformedTemplate, source, tmpl.Difficulty)
	}
	if tmpl.Version <= 0 {
		tmpl.Version = 1
	}

	sections := make(map[string]bool, len(tmpl.Sections))
	for _, section := range tmpl.Sections {
		if sections[section.Name] {
			return nil, fmt.Errorf("%w: %s: duplicate section %q", ErrMalformedTemplate, source, section.Name)
		}
		sections[section.Name] = true
	}
	for _, required := range models.CanonicalSections {
		if !sections[required] {
			return nil, fmt.Errorf("%w: %s: missing section %q", ErrMalformedTemplate, source, required)
		}
	}

	tmpl.Placeholders = collectPlaceholders(&tmpl)
	for _, name := range tmpl.Placeholders {
		if !models.KnownPlaceholder(name) {
			return nil, fmt.Errorf("%w: %s: unresolvable placeholder %q", ErrMalformedTemplate, source, name)
		}
	}

	return &tmpl, nil
}

// collectPlaceholders returns the distinct placeholder names across all
// sections, sorted for deterministic output.
func collectPlaceholders(tmpl *models.DefenseTemplate) []string {
	seen := make(map[string]bool)
	var names []string
	for _, section := range tmpl.Sections {
		for _, match := range placeholderPattern.FindAllStringSubmatch(section.Body, -1) {
			if !seen[match[1]] {
				seen[match[1]] = true
				names = append(names, match[1])
			}
		}
	}
	sort.Strings(names)
	return names
}
