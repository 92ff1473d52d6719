package patterns

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemAnchor(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		index string
		code  string
	}{
		{"current code", "01 Resíduo : D099 - Óleo usado", "01", "D099"},
		{"upper case label", "2 RESÍDUO: K001 - Lodo", "2", "K001"},
		{"legacy code", "03 Resíduo : 12.34.567 - Borra", "03", "12.34.567"},
		{"malformed code still anchors", "04 Resíduo : XYZ - Qualquer", "04", "XYZ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ItemAnchor.FindStringSubmatch(tt.text)
			require.NotNil(t, m)
			assert.Equal(t, tt.index, m[1])
			assert.Equal(t, tt.code, m[2])
		})
	}

	assert.Nil(t, ItemAnchor.FindStringSubmatch("2025 Resíduo sem código"))
}

func TestCodeShapes(t *testing.T) {
	assert.True(t, ResidueCode.MatchString("D099"))
	assert.False(t, ResidueCode.MatchString("d099"))
	assert.False(t, ResidueCode.MatchString("XYZ"))
	assert.True(t, LegacyCode.MatchString("12.34.567"))
	assert.False(t, LegacyCode.MatchString("1234567"))
}

func TestNormalizeLegacyCode(t *testing.T) {
	assert.Equal(t, "12.34.567", NormalizeLegacyCode("12 34 567"))
	assert.Equal(t, "12.34.567", NormalizeLegacyCode("1234567"))
	assert.Equal(t, "123", NormalizeLegacyCode("123"))
}

func TestBoilerplateLines(t *testing.T) {
	assert.True(t, IsLetterhead("GOVERNO DO ESTADO DE SÃO PAULO"))
	assert.True(t, IsFooter("Pag. 2/5"))
	assert.True(t, IsFooter("  Pag.3/3 "))
	assert.False(t, IsFooter("Pag. 2/5 de resíduos"))
	assert.True(t, IsPageMarker("--- PÁGINA 4 ---"))
}

func TestLabelValue(t *testing.T) {
	block := "Origem : Processo produtivo Classe : I\nComposição Aproximada: óleo mineral 90% Método Utilizado: NBR 10004\nCor, Cheiro, Aspecto: preto, forte, viscoso\nAcondicionamento : E01 - Tambor"

	v, ok := LabelValue(block, LabelOrigin)
	require.True(t, ok)
	assert.Equal(t, "Processo produtivo", v)

	v, ok = LabelValue(block, LabelComposition)
	require.True(t, ok)
	assert.Equal(t, "óleo mineral 90%", v)

	v, ok = LabelValue(block, LabelMethod)
	require.True(t, ok)
	assert.Equal(t, "NBR 10004", v)

	v, ok = LabelValue(block, LabelAppearance)
	require.True(t, ok)
	assert.Equal(t, "preto, forte, viscoso", v)

	_, ok = LabelValue(block, LabelDestination)
	assert.False(t, ok)
}

func TestCompound(t *testing.T) {
	m := Compound.FindStringSubmatch("Classe : IIA Estado Físico: SOLIDO O/I: I Qtde: 1.234,5 m³/ano")
	require.NotNil(t, m)
	assert.Equal(t, []string{"IIA", "SOLIDO", "I", "1.234,5", "m³"}, m[1:])
}

func TestFindSection(t *testing.T) {
	s, ok := FindSection("cabecalho\nRESÍDUOS AUTORIZADOS\n12.34.567 Borra")
	require.True(t, ok)
	assert.Contains(t, s, "12.34.567")

	_, ok = FindSection("nada aqui")
	assert.False(t, ok)
}

func TestIsLabelOnly(t *testing.T) {
	assert.True(t, IsLabelOnly("Nome Nº do Cadastro na CETESB"))
	assert.True(t, IsLabelOnly("Logradouro"))
	assert.True(t, IsLabelOnly("Bairro CEP Município"))
	assert.False(t, IsLabelOnly("INDUSTRIA ACME LTDA 123-456-7"))
	assert.False(t, IsLabelOnly("123"))
}

func TestCutAtUpperRun(t *testing.T) {
	assert.Equal(t, "Tambor", CutAtUpperRun("Tambor DESTINO FINAL"))
	assert.Equal(t, "TAMBOR", CutAtUpperRun("TAMBOR"))
}

func TestWindowEnd(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		start int
		n     int
		want  int
	}{
		{name: "ascii", text: "abcdef", start: 1, n: 3, want: 4},
		{name: "multibyte", text: "ééé", start: 0, n: 2, want: 4},
		{name: "clamped", text: "ação", start: 0, n: 100, want: len("ação")},
		{name: "from middle", text: "xção", start: 1, n: 1, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WindowEnd(tt.text, tt.start, tt.n))
		})
	}
}

func TestFindSection_WindowInCharacters(t *testing.T) {
	text := "RESÍDUOS AUTORIZADOS\n" + strings.Repeat("ç", SectionWindow+50)
	sec, ok := FindSection(text)
	require.True(t, ok)
	assert.Equal(t, SectionWindow, len([]rune(sec)))
}
