package service

import (
	"testing"
	"time"

	"defesadigital-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
}

func testTemplate(bodies map[string]string) *models.DefenseTemplate {
	tmpl := &models.DefenseTemplate{
		ID:         "test_v1",
		Category:   models.FineTypeEstacionamento,
		Difficulty: models.DifficultyBasic,
		Version:    1,
	}
	placeholders := map[string]bool{}
	for _, name := range models.CanonicalSections {
		body := bodies[name]
		tmpl.Sections = append(tmpl.Sections, models.TemplateSection{Name: name, Body: body})
		for _, match := range placeholderPattern.FindAllStringSubmatch(body, -1) {
			placeholders[match[1]] = true
		}
	}
	for name := range placeholders {
		tmpl.Placeholders = append(tmpl.Placeholders, name)
	}
	return tmpl
}

func TestFieldMapperMapsDirectFields(t *testing.T) {
	record := models.FineRecord{
		InfractionCode: "ART-048",
		Date:           "2025-01-15",
		Location:       "Lisboa",
		InfractorName:  "João Silva",
		FineAmount:     120.0,
	}
	tmpl := testTemplate(map[string]string{
		models.SectionIntroduction: "{{infractor_name}} {{infraction_code}}",
		models.SectionFacts:        "{{fine_date}} {{location}} {{fine_amount}}",
		models.SectionLegalGrounds: "{{fine_category}}",
		models.SectionRequest:      "{{current_date}}",
	})

	mapper := FieldMapper{Now: fixedClock}
	mapping, manual := mapper.Map(record, models.FineTypeEstacionamento, tmpl)

	assert.Empty(t, manual)
	assert.Equal(t, "João Silva", mapping["infractor_name"])
	assert.Equal(t, "ART-048", mapping["infraction_code"])
	assert.Equal(t, "2025-01-15", mapping["fine_date"])
	assert.Equal(t, "Lisboa", mapping["location"])
	assert.Equal(t, "120.00 EUR", mapping["fine_amount"])
	assert.Equal(t, "estacionamento_paragem", mapping["fine_category"])
	assert.Equal(t, "2025-03-10", mapping["current_date"])
}

func TestFieldMapperMarksManualFields(t *testing.T) {
	tmpl := testTemplate(map[string]string{
		models.SectionIntroduction: "Auto n.º {{auto_number}}",
		models.SectionFacts:        "{{circumstances}}",
		models.SectionLegalGrounds: "{{specific_grounds}}",
		models.SectionRequest:      "Pede deferimento",
	})

	mapper := FieldMapper{Now: fixedClock}
	mapping, manual := mapper.Map(models.FineRecord{}, models.FineTypeGeral, tmpl)

	assert.Equal(t, []string{"auto_number", "circumstances", "specific_grounds"}, manual)
	assert.Equal(t, "[REQUIRES MANUAL INPUT: auto_number]", mapping["auto_number"])
	assert.Equal(t, "[REQUIRES MANUAL INPUT: circumstances]", mapping["circumstances"])
	assert.Equal(t, "[REQUIRES MANUAL INPUT: specific_grounds]", mapping["specific_grounds"])
}

func TestSubstitutePlaceholders(t *testing.T) {
	mapping := PlaceholderMapping{
		"infractor_name": "Maria Santos",
		"fine_amount":    "60.00 EUR",
	}

	out := substitutePlaceholders("Eu, {{infractor_name}}, contesto a coima de {{ fine_amount }}.", mapping)
	assert.Equal(t, "Eu, Maria Santos, contesto a coima de 60.00 EUR.", out)
}

func TestSubstitutePlaceholdersLeavesUnmappedMarkers(t *testing.T) {
	out := substitutePlaceholders("Valor: {{fine_amount}}", PlaceholderMapping{})
	assert.Equal(t, "Valor: {{fine_amount}}", out)
}

func TestManualInputMarkerFormat(t *testing.T) {
	require.Equal(t, "[REQUIRES MANUAL INPUT: auto_number]", ManualInputMarker("auto_number"))
}
