package llm

import (
	"fmt"
	"unicode/utf8"
)

// TruncationMarker is appended when the document text exceeds the budget.
const TruncationMarker = "\n... [TEXTO TRUNCADO] ..."

// SystemPrompt describes the reply format. The model sees it on every call.
const SystemPrompt = `Você é um especialista em extração de dados de certificados CADRI da CETESB.

RETORNE APENAS JSON VÁLIDO, sem texto antes ou depois.

ESTRUTURA:
{
  "numero_documento": "número do documento",
  "total_items": número inteiro de itens,
  "items": [objetos com os campos abaixo],
  "extraction_method": "llm",
  "processed_at": "2025-09-24T12:00:00"
}

CAMPOS DE CADA ITEM (omita o campo se não encontrado):
- "numero_documento": número do documento
- "item_numero": "01", "02", ...
- "numero_residuo": código do resíduo, uma letra maiúscula seguida de três dígitos ("D099", "F001", "K001", "A021"); em documentos antigos, "XX.XX.XXX"
- "descricao_residuo": descrição completa do resíduo
- "origem_residuo": origem do resíduo
- "classe_residuo": "I", "IIA" ou "IIB"
- "estado_fisico": "LIQUIDO", "SOLIDO" ou "GASOSO"
- "oii": "I", "O" ou "I/O"
- "quantidade": valor numérico com ponto decimal, como texto ("50.0")
- "unidade": "t", "kg", "L", "m³", "un"
- "composicao_aproximada": composição aproximada
- "metodo_utilizado": método utilizado
- "cor_cheiro_aspecto": cor, cheiro e aspecto
- "acondicionamento_codigos": códigos de embalagem separados por vírgula ("E01,E04,E05")
- "acondicionamento_descricoes": descrições das embalagens, na mesma ordem, separadas por " | "
- "destino_codigo": código do destino ("T34", "R01")
- "destino_descricao": descrição do destino
- "pagina_origem": número inteiro da página
- "raw_fragment": trecho original do texto
- "entidade_geradora": {"nome", "cadastro_cetesb", "logradouro", "numero", "complemento", "bairro", "cep", "municipio", "uf", "atividade", "bacia_hidrografica", "funcionarios"}
- "entidade_destinacao": {"nome", "cadastro_cetesb", "logradouro", "numero", "complemento", "bairro", "cep", "municipio", "uf", "atividade", "bacia_hidrografica", "licenca", "data_licenca"}
- "dados_documento": {"numero_processo", "numero_certificado", "versao_documento", "data_documento", "data_validade", "tipo_documento"}

ONDE PROCURAR:
- Itens começam com o número do item seguido de "Resíduo :" e o código
- Embalagens: códigos "E01", "E04", "E05" seguidos de " - " e a descrição (Tambor, Tanque, Container)
- Entidades: seções "ENTIDADE GERADORA" e "ENTIDADE DE DESTINAÇÃO"
- Classes: I (perigoso), IIA (não perigoso, não inerte), IIB (não perigoso, inerte)

DATA E HORA:
- Formato "YYYY-MM-DDTHH:MM:SS", por exemplo "2025-09-24T12:00:00"
- Nunca use "::"

Mantenha os valores como aparecem no documento.`

// BuildUserPrompt wraps the document text. Text longer than maxRunes is cut,
// keeping the prefix, and TruncationMarker is appended.
func BuildUserPrompt(documentID, text string, maxRunes int) string {
	if maxRunes > 0 && utf8.RuneCountInString(text) > maxRunes {
		text = string([]rune(text)[:maxRunes]) + TruncationMarker
	}
	return fmt.Sprintf("Extraia dados estruturados do seguinte documento CADRI número %s:\n\n%s\n\n"+
		"IMPORTANTE: Retorne um JSON válido com todos os itens de resíduos encontrados.", documentID, text)
}
