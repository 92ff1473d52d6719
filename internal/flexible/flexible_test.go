package flexible

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cadri-extractor/internal/entity"
	"github.com/joseph-ayodele/cadri-extractor/internal/utils"
)

func doc(text string) *entity.SourceDocument {
	return entity.NewSourceDocument("doc-1", []string{text})
}

func TestRelaxedAnchor(t *testing.T) {
	text := "Resíduo: D 099 - Óleo usado\n" +
		"Classe : I\n" +
		"Estado Físico: LIQUIDO\n" +
		"Qtde: 50 t/ano\n" +
		"\n" +
		"Resíduo F001 - Solventes\n" +
		"Classe : II A\n"

	items := RelaxedAnchor(doc(text))
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "01", first.ItemIndex)
	assert.Equal(t, "D099", utils.StrOrEmpty(first.ResidueCode))
	assert.Equal(t, "Óleo usado", utils.StrOrEmpty(first.Description))
	assert.Equal(t, "I", utils.StrOrEmpty(first.Class))
	assert.Equal(t, "LIQUIDO", utils.StrOrEmpty(first.PhysicalState))
	assert.Equal(t, "50", utils.StrOrEmpty(first.Quantity))
	assert.Equal(t, "t", utils.StrOrEmpty(first.Unit))
	require.NotNil(t, first.SourcePage)
	assert.Equal(t, 1, *first.SourcePage)

	assert.Equal(t, "02", items[1].ItemIndex)
	assert.Equal(t, "F001", utils.StrOrEmpty(items[1].ResidueCode))
	assert.Equal(t, "IIA", utils.StrOrEmpty(items[1].Class))
}

func TestSectionScan(t *testing.T) {
	text := "CERTIFICADO\n" +
		"RESÍDUOS AUTORIZADOS\n" +
		"12.34.567 Borra oleosa de separador 100 kg Classe: I\n" +
		"continuação da descrição\n" +
		"\n" +
		"12.34.999\n" +
		"\n" +
		"1234568 Lodo de ETE 2,5 t\n"

	items := SectionScan(doc(text))
	require.Len(t, items, 2)

	assert.Equal(t, "01", items[0].ItemIndex)
	assert.Equal(t, "12.34.567", utils.StrOrEmpty(items[0].ResidueCode))
	assert.Equal(t, "Borra oleosa de separador 100 kg Classe: I continuação da descrição", utils.StrOrEmpty(items[0].Description))
	assert.Equal(t, "100", utils.StrOrEmpty(items[0].Quantity))
	assert.Equal(t, "kg", utils.StrOrEmpty(items[0].Unit))
	assert.Equal(t, "I", utils.StrOrEmpty(items[0].Class))

	assert.Equal(t, "02", items[1].ItemIndex)
	assert.Equal(t, "12.34.568", utils.StrOrEmpty(items[1].ResidueCode))
	assert.Equal(t, "2.5", utils.StrOrEmpty(items[1].Quantity))
	assert.Equal(t, "t", utils.StrOrEmpty(items[1].Unit))
}

func TestSectionScan_NoMarker(t *testing.T) {
	assert.Nil(t, SectionScan(doc("12.34.567 Borra oleosa\n")))
}

func TestCodeScan(t *testing.T) {
	text := "Relação\n" +
		"item 12.34.567 Borra oleosa\n" +
		"50 kg\n" +
		"item 12 34 567 repetido\n" +
		"98.76.543 Solvente"

	items := CodeScan(doc(text))
	require.Len(t, items, 2)

	assert.Equal(t, "01", items[0].ItemIndex)
	assert.Equal(t, "12.34.567", utils.StrOrEmpty(items[0].ResidueCode))
	assert.Equal(t, "Borra oleosa 50 kg", utils.StrOrEmpty(items[0].Description))
	assert.Equal(t, "50", utils.StrOrEmpty(items[0].Quantity))
	assert.Equal(t, "kg", utils.StrOrEmpty(items[0].Unit))
	assert.Equal(t, "12.34.567 Borra oleosa 50 kg", utils.StrOrEmpty(items[0].RawFragment))

	assert.Equal(t, "02", items[1].ItemIndex)
	assert.Equal(t, "98.76.543", utils.StrOrEmpty(items[1].ResidueCode))
	assert.Equal(t, "Solvente", utils.StrOrEmpty(items[1].Description))
}

func TestPasses_Deterministic(t *testing.T) {
	text := "RESÍDUOS AUTORIZADOS\n12.34.567 Borra oleosa 100 kg\n98.76.543 Solvente 3 t\n"
	for _, p := range Passes {
		assert.Equal(t, p.Run(doc(text)), p.Run(doc(text)), p.Name)
	}
}
