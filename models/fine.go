package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// FineType categorizes an infraction under the Portuguese Código da Estrada.
// Templates and legal articles are keyed by these categories.
type FineType string

const (
	FineTypeEstacionamento FineType = "estacionamento_paragem"
	FineTypeVelocidade     FineType = "excesso_velocidade"
	FineTypeAlcool         FineType = "alcool_substancias"
	FineTypeSinalizacao    FineType = "desrespeito_sinalizacao"
	FineTypeDocumentacao   FineType = "falta_documentacao"
	FineTypeTelemovel      FineType = "uso_telemovel"

	// FineTypeGeral is the designated fallback category. The catalog must
	// always carry at least one template for it.
	FineTypeGeral FineType = "defesa_geral"
)

var ErrUnknownFineType = errors.New("unknown fine type")

// fineTypeByCode maps normalized infraction codes to their category.
// The table is exhaustive on purpose: an unmapped code is an error, never
// a silent fallback to an arbitrary template.
var fineTypeByCode = map[string]FineType{
	"ART-024": FineTypeVelocidade,
	"ART-025": FineTypeVelocidade,
	"ART-027": FineTypeVelocidade,
	"ART-048": FineTypeEstacionamento,
	"ART-049": FineTypeEstacionamento,
	"ART-050": FineTypeEstacionamento,
	"ART-081": FineTypeAlcool,
	"ART-084": FineTypeTelemovel,
	"ART-085": FineTypeTelemovel,
	"ART-021": FineTypeSinalizacao,
	"ART-013": FineTypeSinalizacao,
	"ART-085A": FineTypeDocumentacao,
	"ART-150": FineTypeDocumentacao,
}

// ResolveFineType resolves an infraction code to its category.
// Codes are matched case-insensitively after trimming whitespace.
func ResolveFineType(infractionCode string) (FineType, error) {
	code := strings.ToUpper(strings.TrimSpace(infractionCode))
	if code == "" {
		return "", fmt.Errorf("%w: empty infraction code", ErrUnknownFineType)
	}
	if ft, ok := fineTypeByCode[code]; ok {
		return ft, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFineType, code)
}

// KnownFineTypes returns every category that at least one infraction code
// resolves to, plus the general fallback category.
func KnownFineTypes() []FineType {
	seen := map[FineType]bool{FineTypeGeral: true}
	types := []FineType{FineTypeGeral}
	for _, ft := range fineTypeByCode {
		if !seen[ft] {
			seen[ft] = true
			types = append(types, ft)
		}
	}
	return types
}

// ValidFineType reports whether s names a known category.
func ValidFineType(s string) bool {
	if FineType(s) == FineTypeGeral {
		return true
	}
	for _, ft := range fineTypeByCode {
		if FineType(s) == ft {
			return true
		}
	}
	return false
}

// FineRecord is the structured representation of a single traffic
// infraction, produced upstream by the OCR/intake layer. The generation
// pipeline only reads it.
type FineRecord struct {
	ID             uuid.UUID `json:"id"`
	InfractionCode string    `json:"infraction_code"`
	Date           string    `json:"date"` // as printed on the notice
	Location       string    `json:"location"`
	InfractorName  string    `json:"infractor_name"`
	FineAmount     float64   `json:"fine_amount"`
	Notes          *string   `json:"notes,omitempty"`
}
