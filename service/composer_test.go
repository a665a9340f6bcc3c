package service

import (
	"strings"
	"testing"

	"defesadigital-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func composerTemplate() *models.DefenseTemplate {
	return testTemplate(map[string]string{
		models.SectionIntroduction: "{{infractor_name}}, auto n.º {{auto_number}}, infração {{infraction_code}}.",
		models.SectionFacts:        "No dia {{fine_date}}, em {{location}}, coima de {{fine_amount}}.",
		models.SectionLegalGrounds: "Invoca-se o regime aplicável.",
		models.SectionRequest:      "Requer-se o arquivamento. {{current_date}}",
	})
}

func TestComposeFillsCanonicalSections(t *testing.T) {
	record := models.FineRecord{
		ID:             uuid.New(),
		InfractionCode: "ART-048",
		Date:           "2025-01-15",
		Location:       "Lisboa",
		InfractorName:  "João Silva",
		FineAmount:     120.0,
	}
	articles := []models.LegalArticle{
		{
			ID:            uuid.New(),
			ArticleNumber: "Artigo 48.º",
			Title:         "Estacionamento proibido",
			Summary:       "Regula a paragem e o estacionamento.",
		},
	}

	c := Composer{Mapper: FieldMapper{Now: fixedClock}}
	content, manual := c.Compose(record, models.FineTypeEstacionamento, composerTemplate(), articles, GenerationOptions{})

	assert.Contains(t, content, "DEFESA DE CONTRAORDENAÇÃO RODOVIÁRIA")
	assert.Contains(t, content, "João Silva")
	assert.Contains(t, content, "Lisboa")
	assert.Contains(t, content, "120.00 EUR")
	assert.Contains(t, content, "Artigo 48.º")
	assert.Contains(t, content, "[REQUIRES MANUAL INPUT: auto_number]")
	assert.Equal(t, []string{"auto_number"}, manual)

	// Section order follows the canonical letter layout
	intro := strings.Index(content, "I. INTRODUÇÃO")
	facts := strings.Index(content, "II. DOS FACTOS")
	grounds := strings.Index(content, "III. DOS FUNDAMENTOS DE DIREITO")
	request := strings.Index(content, "IV. DO PEDIDO")
	require.True(t, intro >= 0 && facts > intro && grounds > facts && request > grounds)

	assert.NotContains(t, content, "{{")
	assert.NotContains(t, content, NoArticlesMarker)
}

func TestComposeEmitsNoArticlesMarker(t *testing.T) {
	record := models.FineRecord{
		InfractionCode: "ART-048",
		InfractorName:  "Maria Santos",
		Location:       "Porto",
	}

	c := Composer{Mapper: FieldMapper{Now: fixedClock}}
	content, _ := c.Compose(record, models.FineTypeEstacionamento, composerTemplate(), nil, GenerationOptions{})

	assert.Contains(t, content, NoArticlesMarker)
	assert.NotContains(t, content, "Invoca-se, em particular")
}

func TestComposeMergesNotes(t *testing.T) {
	recordNotes := "veículo estava avariado"
	extraNotes := "existiam outros veículos na mesma situação"
	record := models.FineRecord{
		InfractionCode: "ART-048",
		InfractorName:  "Maria Santos",
		Location:       "Porto",
		Notes:          &recordNotes,
	}

	c := Composer{Mapper: FieldMapper{Now: fixedClock}}
	content, _ := c.Compose(record, models.FineTypeEstacionamento, composerTemplate(), nil, GenerationOptions{
		ExtraNotes: &extraNotes,
	})

	assert.Contains(t, content, "veículo estava avariado")
	assert.Contains(t, content, "existiam outros veículos na mesma situação")
}

func TestComposeIncludesContestationReasonsWhenRequested(t *testing.T) {
	articles := []models.LegalArticle{
		{
			ArticleNumber:       "Artigo 48.º",
			Title:               "Estacionamento proibido",
			Summary:             "Regula a paragem e o estacionamento.",
			ContestationReasons: []string{"sinalização inexistente no local"},
		},
	}
	record := models.FineRecord{InfractionCode: "ART-048", InfractorName: "Maria Santos"}

	c := Composer{Mapper: FieldMapper{Now: fixedClock}}

	content, _ := c.Compose(record, models.FineTypeEstacionamento, composerTemplate(), articles, GenerationOptions{})
	assert.NotContains(t, content, "sinalização inexistente no local")

	content, _ = c.Compose(record, models.FineTypeEstacionamento, composerTemplate(), articles, GenerationOptions{
		IncludePrecedents: true,
	})
	assert.Contains(t, content, "sinalização inexistente no local")
}

func TestComposeClosingByStyle(t *testing.T) {
	record := models.FineRecord{InfractionCode: "ART-048", InfractorName: "Maria Santos"}
	c := Composer{Mapper: FieldMapper{Now: fixedClock}}

	content, _ := c.Compose(record, models.FineTypeEstacionamento, composerTemplate(), nil, GenerationOptions{Style: StyleCasual})
	assert.Contains(t, content, "Com os melhores cumprimentos,")

	// Unknown style falls back to the formal sign-off
	content, _ = c.Compose(record, models.FineTypeEstacionamento, composerTemplate(), nil, GenerationOptions{Style: "barroco"})
	assert.Contains(t, content, "Pede deferimento,")
}
