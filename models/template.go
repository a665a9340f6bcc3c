package models

// Difficulty is the tier of a defense template.
type Difficulty string

const (
	DifficultyBasic        Difficulty = "basico"
	DifficultyIntermediate Difficulty = "intermedio"
	DifficultyAdvanced     Difficulty = "avancado"
)

// Canonical section names every defense template must carry, in letter order.
const (
	SectionIntroduction = "introducao"
	SectionFacts        = "factos"
	SectionLegalGrounds = "fundamentos"
	SectionRequest      = "pedido"
)

// CanonicalSections lists the required sections in their letter order.
var CanonicalSections = []string{
	SectionIntroduction,
	SectionFacts,
	SectionLegalGrounds,
	SectionRequest,
}

// TemplateSection is one named section of a letter skeleton. Body text may
// contain {{placeholder}} markers.
type TemplateSection struct {
	Name string `json:"name" yaml:"name"`
	Body string `json:"body" yaml:"body"`
}

// DefenseTemplate is a named, versioned letter skeleton for one fine-type
// category. Instances are built once at catalog load and never mutated;
// catalog refresh replaces them wholesale.
type DefenseTemplate struct {
	ID         string            `json:"id" yaml:"id"`
	Category   FineType          `json:"category" yaml:"category"`
	Difficulty Difficulty        `json:"difficulty" yaml:"difficulty"`
	Version    int               `json:"version" yaml:"version"`
	Sections   []TemplateSection `json:"sections" yaml:"sections"`

	// Placeholders holds the distinct placeholder names found across all
	// sections, collected at parse time.
	Placeholders []string `json:"placeholders" yaml:"-"`
}

// Section returns the section with the given name, or nil.
func (t *DefenseTemplate) Section(name string) *TemplateSection {
	for i := range t.Sections {
		if t.Sections[i].Name == name {
			return &t.Sections[i]
		}
	}
	return nil
}
