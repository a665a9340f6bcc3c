package service

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	"defesadigital-backend/models"
)

// PlaceholderMapping is the per-request mapping from placeholder name to
// substituted value. Never persisted.
type PlaceholderMapping map[string]string

// FieldMapper maps a FineRecord's attributes onto template placeholders.
// Direct fields map 1:1; manual-only placeholders are substituted with an
// explicit marker instead of a guessed value, so the letter never presents
// fabricated specifics as if the client supplied them.
type FieldMapper struct {
	// Now supplies the clock for the current_date placeholder.
	Now func() time.Time
}

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// ManualInputMarker renders the marker emitted for a manual-only field.
func ManualInputMarker(field string) string {
	return fmt.Sprintf("[REQUIRES MANUAL INPUT: %s]", field)
}

// Map builds the placeholder mapping for a template and reports which
// fields still require manual input. Every placeholder the template
// references resolves to a value; catalog validation guarantees the
// template only uses known names.
func (m FieldMapper) Map(record models.FineRecord, category models.FineType, tmpl *models.DefenseTemplate) (PlaceholderMapping, []string) {
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}

	values := PlaceholderMapping{
		models.PlaceholderInfractorName:  record.InfractorName,
		models.PlaceholderInfractionCode: record.InfractionCode,
		models.PlaceholderFineDate:       record.Date,
		models.PlaceholderLocation:       record.Location,
		models.PlaceholderFineAmount:     fmt.Sprintf("%.2f EUR", record.FineAmount),
		models.PlaceholderCurrentDate:    now().Format("2006-01-02"),
		models.PlaceholderFineCategory:   string(category),
	}

	mapping := make(PlaceholderMapping, len(tmpl.Placeholders))
	var manual []string
	for _, name := range tmpl.Placeholders {
		if models.IsManualPlaceholder(name) {
			mapping[name] = ManualInputMarker(name)
			manual = append(manual, name)
			continue
		}
		mapping[name] = values[name]
	}
	sort.Strings(manual)

	return mapping, manual
}

// substitutePlaceholders replaces every {{name}} marker in body with its
// mapped value.
func substitutePlaceholders(body string, mapping PlaceholderMapping) string {
	return placeholderPattern.ReplaceAllStringFunc(body, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		if value, ok := mapping[name]; ok {
			return value
		}
		return match
	})
}
