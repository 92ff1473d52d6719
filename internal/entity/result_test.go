package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cadri-extractor/constants"
)

func sp(s string) *string { return &s }

func TestExtractionResult_Rows(t *testing.T) {
	gen := &Organization{Role: RoleGenerator, Name: sp("ACME LTDA"), Employees: sp("42")}
	dst := &Organization{Role: RoleDestination, Name: sp("DESTINO SA"), License: sp("123")}
	meta := &DocumentMetadata{CertificateNumber: sp("12345678")}
	page := 2

	res := &ExtractionResult{
		DocumentID:  "12345",
		TotalItems:  1,
		Method:      constants.MethodStructured,
		ProcessedAt: time.Date(2025, 9, 24, 12, 0, 0, 0, time.UTC),
		Items: []WasteItem{{
			DocumentID:            "12345",
			ItemIndex:             "01",
			ResidueCode:           sp("D099"),
			PackagingCodes:        []string{"E01", "E04"},
			PackagingDescriptions: []string{"Tambor", ""},
			SourcePage:            &page,
			Generator:             gen,
			Destination:           dst,
			Metadata:              meta,
		}},
	}

	rows := res.Rows()
	require.Len(t, rows, 1)
	r := rows[0]
	assert.Equal(t, "D099", r.ResidueKey)
	assert.Equal(t, "E01,E04", *r.Columns["acondicionamento_codigos"])
	assert.Equal(t, "Tambor | ", *r.Columns["acondicionamento_descricoes"])
	assert.Equal(t, "2", *r.Columns["pagina_origem"])
	assert.Equal(t, "ACME LTDA", *r.Columns["geradora_nome"])
	assert.Equal(t, "42", *r.Columns["geradora_funcionarios"])
	assert.Equal(t, "123", *r.Columns["destino_entidade_licenca"])
	assert.Equal(t, "12345678", *r.Columns["numero_certificado"])
	assert.Nil(t, r.Columns["classe_residuo"])

	for name := range r.Columns {
		assert.Contains(t, FlatColumns, name)
	}
	assert.Equal(t, constants.DocumentStatusDone, res.Status())
}

func TestOrganization_Merge(t *testing.T) {
	base := &Organization{Name: sp("A")}
	base.Merge(&Organization{Name: sp("B"), Municipality: sp("São Paulo")})
	assert.Equal(t, "A", *base.Name)
	assert.Equal(t, "São Paulo", *base.Municipality)
	assert.False(t, base.IsZero())
	assert.True(t, (&Organization{}).IsZero())
}
