package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFineType(t *testing.T) {
	tests := []struct {
		name string
		code string
		want FineType
	}{
		{name: "parking code", code: "ART-048", want: FineTypeEstacionamento},
		{name: "speeding code", code: "ART-027", want: FineTypeVelocidade},
		{name: "alcohol code", code: "ART-081", want: FineTypeAlcool},
		{name: "phone code", code: "ART-084", want: FineTypeTelemovel},
		{name: "signage code", code: "ART-021", want: FineTypeSinalizacao},
		{name: "documentation code", code: "ART-150", want: FineTypeDocumentacao},
		{name: "lowercase is normalized", code: "art-048", want: FineTypeEstacionamento},
		{name: "surrounding whitespace is trimmed", code: "  ART-025  ", want: FineTypeVelocidade},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveFineType(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveFineTypeUnknown(t *testing.T) {
	for _, code := range []string{"ZZZ-999", "ART-999", "", "   "} {
		_, err := ResolveFineType(code)
		assert.ErrorIs(t, err, ErrUnknownFineType, "code %q", code)
	}
}

func TestKnownFineTypesIncludesFallback(t *testing.T) {
	types := KnownFineTypes()
	assert.Contains(t, types, FineTypeGeral)
	assert.Contains(t, types, FineTypeVelocidade)
	assert.Contains(t, types, FineTypeEstacionamento)
}

func TestValidFineType(t *testing.T) {
	assert.True(t, ValidFineType("defesa_geral"))
	assert.True(t, ValidFineType("excesso_velocidade"))
	assert.False(t, ValidFineType("multas_variadas"))
	assert.False(t, ValidFineType(""))
}
