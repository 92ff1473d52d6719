package entity

import (
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/cadri-extractor/constants"
)

// ExtractionResult is the uniform output of the orchestrator for one document.
type ExtractionResult struct {
	DocumentID  string                     `json:"numero_documento"`
	TotalItems  int                        `json:"total_items"`
	Items       []WasteItem                `json:"items"`
	Method      constants.ExtractionMethod `json:"extraction_method"`
	ProcessedAt time.Time                  `json:"processed_at"`
}

// Status maps the result to the document status stored in the sink.
func (r *ExtractionResult) Status() constants.DocumentStatus {
	if r.TotalItems == 0 {
		return constants.DocumentStatusNoItems
	}
	return constants.DocumentStatusDone
}

// ItemRow is the flat record written to the sink, one per item.
// Entity and metadata fields are denormalized onto every row.
type ItemRow struct {
	DocumentID string
	ItemIndex  string
	ResidueKey string // residue code or legacy code; upsert key in residue_code mode

	Columns map[string]*string

	Method      constants.ExtractionMethod
	ProcessedAt time.Time
}

// ItemColumns lists the flat item columns in output order.
var ItemColumns = []string{
	"numero_residuo", "codigo_residuo_legado", "descricao_residuo", "origem_residuo",
	"classe_residuo", "estado_fisico", "oii", "quantidade", "unidade",
	"composicao_aproximada", "metodo_utilizado", "cor_cheiro_aspecto",
	"acondicionamento_codigos", "acondicionamento_descricoes",
	"destino_codigo", "destino_descricao", "pagina_origem", "raw_fragment",
}

var orgColumns = []string{
	"nome", "cadastro_cetesb", "logradouro", "numero", "complemento", "bairro",
	"cep", "municipio", "uf", "atividade", "bacia_hidrografica",
}

// GeneratorColumns lists the denormalized generator columns.
var GeneratorColumns = prefixed("geradora_", append(append([]string{}, orgColumns...), "funcionarios"))

// DestinationColumns lists the denormalized destination columns.
var DestinationColumns = prefixed("destino_entidade_", append(append([]string{}, orgColumns...), "licenca", "data_licenca"))

// MetadataColumns lists the denormalized document columns.
var MetadataColumns = []string{
	"numero_processo", "numero_certificado", "versao_documento",
	"data_documento", "data_validade", "tipo_documento",
}

// FlatColumns is every nullable column of an ItemRow in output order.
var FlatColumns = concat(ItemColumns, GeneratorColumns, DestinationColumns, MetadataColumns)

// Rows flattens the result for the sink.
func (r *ExtractionResult) Rows() []ItemRow {
	rows := make([]ItemRow, 0, len(r.Items))
	for _, it := range r.Items {
		rows = append(rows, ItemRow{
			DocumentID:  r.DocumentID,
			ItemIndex:   it.ItemIndex,
			ResidueKey:  it.Code(),
			Columns:     flatten(it),
			Method:      r.Method,
			ProcessedAt: r.ProcessedAt,
		})
	}
	return rows
}

func flatten(it WasteItem) map[string]*string {
	cols := map[string]*string{
		"numero_residuo":        it.ResidueCode,
		"codigo_residuo_legado": it.LegacyCode,
		"descricao_residuo":     it.Description,
		"origem_residuo":        it.Origin,
		"classe_residuo":        it.Class,
		"estado_fisico":         it.PhysicalState,
		"oii":                   it.OrganicFlag,
		"quantidade":            it.Quantity,
		"unidade":               it.Unit,
		"composicao_aproximada": it.Composition,
		"metodo_utilizado":      it.Method,
		"cor_cheiro_aspecto":    it.Appearance,
		"destino_codigo":        it.DestinationCode,
		"destino_descricao":     it.DestinationDescription,
		"raw_fragment":          it.RawFragment,
	}
	if len(it.PackagingCodes) > 0 {
		cols["acondicionamento_codigos"] = strPtr(strings.Join(it.PackagingCodes, ","))
		cols["acondicionamento_descricoes"] = strPtr(strings.Join(it.PackagingDescriptions, " | "))
	}
	if it.SourcePage != nil {
		cols["pagina_origem"] = strPtr(strconv.Itoa(*it.SourcePage))
	}
	orgInto(cols, "geradora_", it.Generator)
	orgInto(cols, "destino_entidade_", it.Destination)
	if m := it.Metadata; m != nil {
		cols["numero_processo"] = m.ProcessNumber
		cols["numero_certificado"] = m.CertificateNumber
		cols["versao_documento"] = m.Version
		cols["data_documento"] = m.IssueDate
		cols["data_validade"] = m.ValidUntil
		cols["tipo_documento"] = m.DocumentType
	}
	return cols
}

func orgInto(cols map[string]*string, prefix string, o *Organization) {
	if o == nil {
		return
	}
	vals := map[string]*string{
		"nome": o.Name, "cadastro_cetesb": o.Registration, "logradouro": o.Street,
		"numero": o.Number, "complemento": o.Complement, "bairro": o.District,
		"cep": o.PostalCode, "municipio": o.Municipality, "uf": o.State,
		"atividade": o.Activity, "bacia_hidrografica": o.Watershed,
	}
	switch prefix {
	case "geradora_":
		vals["funcionarios"] = o.Employees
	default:
		vals["licenca"] = o.License
		vals["data_licenca"] = o.LicenseDate
	}
	for k, v := range vals {
		cols[prefix+k] = v
	}
}

func prefixed(prefix string, names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = prefix + n
	}
	return out
}

func concat(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func strPtr(s string) *string { return &s }

// DocumentRecord is one row of the per-document status table.
type DocumentRecord struct {
	DocumentID  string
	Status      constants.DocumentStatus
	Method      constants.ExtractionMethod
	TotalItems  int
	Error       string
	ProcessedAt time.Time
}
