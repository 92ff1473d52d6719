package segment

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cadri-extractor/internal/entity"
)

func TestSegment_TwoItems(t *testing.T) {
	page1 := "01 Resíduo : D099 - Óleo usado\nClasse : I Estado Físico: LIQUIDO O/I: O Qtde: 50 t/ano\n"
	page2 := "02 Resíduo : K001 - Lodo de ETE\nClasse : IIA"
	doc := entity.NewSourceDocument("12345", []string{page1, page2})

	blocks := Segment(doc)
	require.Len(t, blocks, 2)

	assert.Equal(t, "01", blocks[0].Index)
	assert.Equal(t, "D099", blocks[0].Code)
	assert.Equal(t, "Óleo usado", blocks[0].Description)
	assert.Equal(t, 1, blocks[0].Page)
	assert.Equal(t, blocks[1].Start, blocks[0].End)
	assert.NotContains(t, blocks[0].Text, "PÁGINA")

	assert.Equal(t, "02", blocks[1].Index)
	assert.Equal(t, 2, blocks[1].Page)
	assert.Equal(t, len(doc.Text()), blocks[1].End)
}

func TestSegment_DescriptionCutAtLabel(t *testing.T) {
	doc := entity.NewSourceDocumentFromText("1", "01 Resíduo : D099 - Óleo usado Classe : I Estado Físico: LIQUIDO O/I: O Qtde: 50 t/ano")
	blocks := Segment(doc)
	require.Len(t, blocks, 1)
	assert.Equal(t, "Óleo usado", blocks[0].Description)
}

func TestSegment_LastBlockWindow(t *testing.T) {
	text := "01 Resíduo : D099 - Óleo\n" + strings.Repeat("x", 5000)
	blocks := Segment(entity.NewSourceDocumentFromText("1", text))
	require.Len(t, blocks, 1)
	assert.Equal(t, 2000, blocks[0].End-blocks[0].Start)
}

func TestSegment_LastBlockWindowCountsCharacters(t *testing.T) {
	text := "01 Resíduo: D099 - Borras\n" + strings.Repeat("é", 3000)
	blocks := Segment(entity.NewSourceDocumentFromText("1", text))
	require.Len(t, blocks, 1)

	b := blocks[0]
	assert.True(t, utf8.ValidString(b.Text))
	assert.Equal(t, 2000, utf8.RuneCountInString(text[b.Start:b.End]))
	assert.Equal(t, 2000, utf8.RuneCountInString(b.Text))
}

func TestSegment_NoAnchors(t *testing.T) {
	assert.Empty(t, Segment(entity.NewSourceDocumentFromText("1", "texto sem itens")))
}

func TestStripBoilerplate(t *testing.T) {
	in := strings.Join([]string{
		"Composição Aproximada: óleo",
		"GOVERNO DO ESTADO DE SÃO PAULO",
		"SECRETARIA DE MEIO AMBIENTE",
		"Pag. 2/4",
		"--- PÁGINA 3 ---",
		"mineral",
	}, "\n")
	assert.Equal(t, "Composição Aproximada: óleo\nmineral", StripBoilerplate(in))
}

func TestSegment_Deterministic(t *testing.T) {
	doc := entity.NewSourceDocument("1", []string{
		"01 Resíduo : D099 - Óleo\nClasse : I Estado Físico: LIQUIDO O/I: O Qtde: 50 t/ano\n02 Resíduo : F001 - Solvente",
	})
	assert.Equal(t, Segment(doc), Segment(doc))
}
