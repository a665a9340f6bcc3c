package service

import (
	"fmt"
	"strings"

	"defesadigital-backend/models"
)

// NoArticlesMarker is inserted into the legal grounds section when the
// knowledge base returned nothing. Downstream quality scoring keys off
// this signal; the letter never fabricates citations instead.
const NoArticlesMarker = "[NO SUPPORTING ARTICLES FOUND]"

// sectionHeadings maps canonical section names to their letter headings.
var sectionHeadings = map[string]string{
	models.SectionIntroduction: "I. INTRODUÇÃO",
	models.SectionFacts:        "II. DOS FACTOS",
	models.SectionLegalGrounds: "III. DOS FUNDAMENTOS DE DIREITO",
	models.SectionRequest:      "IV. DO PEDIDO",
}

// closingByStyle selects the sign-off formula for the requested style.
var closingByStyle = map[Style]string{
	StyleFormal:    "Pede deferimento,",
	StyleCasual:    "Com os melhores cumprimentos,",
	StyleTechnical: "Nestes termos, requer-se a apreciação do exposto.",
}

// Composer produces the template-path defense letter: it maps the fine
// record onto the selected template and assembles the four canonical
// sections with retrieved legal context.
type Composer struct {
	Mapper FieldMapper
}

// Compose fills the template and returns the letter text plus the fields
// still requiring manual input.
func (c Composer) Compose(
	record models.FineRecord,
	category models.FineType,
	tmpl *models.DefenseTemplate,
	articles []models.LegalArticle,
	opts GenerationOptions,
) (string, []string) {
	mapping, manual := c.Mapper.Map(record, category, tmpl)

	var builder strings.Builder
	builder.WriteString("DEFESA DE CONTRAORDENAÇÃO RODOVIÁRIA\n\n")

	for _, name := range models.CanonicalSections {
		section := tmpl.Section(name)
		if section == nil {
			// Catalog validation makes this unreachable for loaded templates.
			continue
		}

		builder.WriteString(sectionHeadings[name])
		builder.WriteString("\n")
		builder.WriteString(strings.TrimSpace(substitutePlaceholders(section.Body, mapping)))
		builder.WriteString("\n")

		switch name {
		case models.SectionFacts:
			writeExtraFacts(&builder, record, opts)
		case models.SectionLegalGrounds:
			writeLegalContext(&builder, articles, opts)
		}
		builder.WriteString("\n")
	}

	closing, ok := closingByStyle[opts.Style]
	if !ok {
		closing = closingByStyle[StyleFormal]
	}
	builder.WriteString(closing)
	builder.WriteString("\n\n")
	builder.WriteString(record.InfractorName)
	builder.WriteString("\n")

	return builder.String(), manual
}

// writeExtraFacts merges the record's OCR notes and the caller's free-text
// notes into the facts section.
func writeExtraFacts(builder *strings.Builder, record models.FineRecord, opts GenerationOptions) {
	if record.Notes != nil && strings.TrimSpace(*record.Notes) != "" {
		builder.WriteString("\nObservações constantes do auto: ")
		builder.WriteString(strings.TrimSpace(*record.Notes))
		builder.WriteString("\n")
	}
	if opts.ExtraNotes != nil && strings.TrimSpace(*opts.ExtraNotes) != "" {
		builder.WriteString("\nO arguido acrescenta ainda: ")
		builder.WriteString(strings.TrimSpace(*opts.ExtraNotes))
		builder.WriteString("\n")
	}
}

// writeLegalContext appends the retrieved article citations, or the
// explicit no-articles marker when retrieval came back empty.
func writeLegalContext(builder *strings.Builder, articles []models.LegalArticle, opts GenerationOptions) {
	if len(articles) == 0 {
		builder.WriteString("\nNão foram localizados artigos de apoio específicos para esta categoria.\n")
		builder.WriteString(NoArticlesMarker)
		builder.WriteString("\n")
		return
	}

	builder.WriteString("\nInvoca-se, em particular, a seguinte legislação aplicável:\n")
	for _, article := range articles {
		builder.WriteString(fmt.Sprintf("- %s (%s): %s\n", article.ArticleNumber, article.Title, article.Summary))
		if opts.IncludePrecedents {
			for _, reason := range article.ContestationReasons {
				builder.WriteString(fmt.Sprintf("  • %s\n", reason))
			}
		}
	}
}
