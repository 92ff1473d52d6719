package patterns

import "regexp"

var (
	GeneratorHeading   = regexp.MustCompile(`(?i)ENTIDADE\s+GERADORA`)
	DestinationHeading = regexp.MustCompile(`(?i)ENTIDADE\s+DE\s+DESTINA[ÇC][ÃA]O`)
	// AuthenticityLine precedes the generator block on layouts that omit the heading.
	AuthenticityLine = regexp.MustCompile(`(?i)autenticidade\.cetesb\.sp\.gov\.br`)

	ProcessNumber     = regexp.MustCompile(`(?i)Processo\s+N[°º]\s*\n?\s*(\d+/\d+/\d+)`)
	CertificateNumber = regexp.MustCompile(`N[°º]\s+(\d{8})\b`)
	CertificateLoose  = regexp.MustCompile(`(?i)\bn[º°]\s*(\d{5,})`)
	VersionDate       = regexp.MustCompile(`(?i)Vers[ãa]o:\s*(\d+)\s*\n?\s*Data:\s*([\d/]+)`)
	Validity          = regexp.MustCompile(`(?i)(validade|v[áa]lida?\s+at[ée]|vencimento)[^\n]*?(\d{2}[/-]\d{2}[/-]\d{4})`)
	DocumentType      = regexp.MustCompile(`(?i)(CADRI|Certificado.*Movimenta[çc][ãa]o|Licen[çc]a|CERT.*MOV.*RESIDUOS)`)
)

// Positional value lines inside entity sections.
var (
	NameRegistration = regexp.MustCompile(`^(.+?)\s+(\d+-\d+-\d+)$`)
	NumberComplement = regexp.MustCompile(`^(\S+)(?:\s+(.+))?$`)
	StreetNumber     = regexp.MustCompile(`^(.+?)\s+(\d+)(?:\s+(.+))?$`)
	DistrictCEPCity  = regexp.MustCompile(`^(.+?)\s+(\d{5}-?\d{3})\s+(.+)$`)
	WatershedCount   = regexp.MustCompile(`^(.+?)\s+(\d+)$`)
	WatershedLicense = regexp.MustCompile(`^(.+?)\s+(\d+)\s+([\d/]+)$`)
)

// EntityLabel is a printed label inside an entity section.
type EntityLabel struct {
	Field string
	Re    *regexp.Regexp
}

// EntityLabels match "Label : value" or "Label - value" lines. Field names
// follow the flat column names without role prefix.
var EntityLabels = []EntityLabel{
	{"nome", regexp.MustCompile(`(?i)^(?:Nome|Raz[ãa]o\s+Social)\s*[:\-–]\s*(.+)$`)},
	{"cadastro_cetesb", regexp.MustCompile(`(?i)^(?:N[º°]\s*(?:do\s+)?)?Cadastro(?:\s+na)?(?:\s+CETESB)?\s*[:\-–]\s*([\d-]+)$`)},
	{"logradouro", regexp.MustCompile(`(?i)^Logradouro\s*[:\-–]\s*(.+)$`)},
	{"numero", regexp.MustCompile(`(?i)^N[úu]mero\s*[:\-–]\s*(\S+)$`)},
	{"complemento", regexp.MustCompile(`(?i)^Complemento\s*[:\-–]\s*(.+)$`)},
	{"bairro", regexp.MustCompile(`(?i)^Bairro\s*[:\-–]\s*(.+)$`)},
	{"cep", regexp.MustCompile(`(?i)^CEP\s*[:\-–]\s*(\d{5}-?\d{3})$`)},
	{"municipio", regexp.MustCompile(`(?i)^Munic[íi]pio\s*[:\-–]\s*(.+)$`)},
	{"uf", regexp.MustCompile(`(?i)^UF\s*[:\-–]\s*([A-Z]{2})$`)},
	{"atividade", regexp.MustCompile(`(?i)^(?:Descri[çc][ãa]o\s+da\s+)?Atividade\s*[:\-–]\s*(.+)$`)},
	{"bacia_hidrografica", regexp.MustCompile(`(?i)^Bacia\s+Hidrogr[áa]fica\s*[:\-–]\s*(.+)$`)},
	{"funcionarios", regexp.MustCompile(`(?i)^(?:N[º°]\s*(?:de\s+)?)?Funcion[áa]rios\s*[:\-–]\s*(\d+)$`)},
	{"licenca", regexp.MustCompile(`(?i)^(?:N[º°]\s*(?:da\s+)?)?Licen[çc]a\s*[:\-–]\s*(\d+)$`)},
	{"data_licenca", regexp.MustCompile(`(?i)^Data(?:\s+da\s+Licen[çc]a)?\s*[:\-–]\s*([\d/]+)$`)},
}

// entityLabelWords are the label words printed on their own lines in the
// form layout. A line made only of these carries no value.
var entityLabelWords = regexp.MustCompile(`(?i)(raz[ãa]o\s+social|nome|n[º°]\s*(?:do\s+|de\s+|da\s+)?|cadastro(?:\s+na)?(?:\s+cetesb)?|logradouro|n[úu]mero|complemento|bairro|cep|munic[íi]pio|\buf\b|descri[çc][ãa]o\s+da\s+atividade|atividade|bacia\s+hidrogr[áa]fica|funcion[áa]rios|licen[çc]a|data|entidade|geradora|destina[çc][ãa]o|\b(?:d[aoe]s?|na)\b|[:\-–/.])`)
var hasValueChar = regexp.MustCompile(`[\pL\d]`)

// IsLabelOnly reports whether a line is made only of entity label words.
func IsLabelOnly(line string) bool {
	rest := entityLabelWords.ReplaceAllString(line, " ")
	return !hasValueChar.MatchString(rest)
}
