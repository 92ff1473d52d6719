// Package metadata reads the generator and destination registration blocks
// and the document header of a certificate.
//
// Entity sections are read positionally: after labelled lines are consumed,
// the remaining value lines are assigned in the order the form prints them.
// On layout variants some fields land in the wrong place or stay nil.
package metadata

import (
	"regexp"
	"strings"
	"time"

	"github.com/joseph-ayodele/cadri-extractor/constants"
	"github.com/joseph-ayodele/cadri-extractor/internal/entity"
	"github.com/joseph-ayodele/cadri-extractor/internal/patterns"
	"github.com/joseph-ayodele/cadri-extractor/internal/utils"
)

// Result is everything extracted once per document.
type Result struct {
	Generator   *entity.Organization
	Destination *entity.Organization
	Metadata    *entity.DocumentMetadata
}

// step consumes one value line. A step whose fields are all filled is
// skipped. When re does not match, the line goes to fallback if set,
// otherwise the step is skipped and the line is offered to the next one.
type step struct {
	re       *regexp.Regexp
	fields   []string
	fallback string
}

var generatorSteps = []step{
	{re: patterns.NameRegistration, fields: []string{"nome", "cadastro_cetesb"}, fallback: "nome"},
	{fields: []string{"logradouro"}},
	{re: patterns.NumberComplement, fields: []string{"numero", "complemento"}},
	{re: patterns.DistrictCEPCity, fields: []string{"bairro", "cep", "municipio"}},
	{fields: []string{"atividade"}},
	{re: patterns.WatershedCount, fields: []string{"bacia_hidrografica", "funcionarios"}},
}

var destinationSteps = []step{
	{re: patterns.NameRegistration, fields: []string{"nome", "cadastro_cetesb"}, fallback: "nome"},
	{re: patterns.StreetNumber, fields: []string{"logradouro", "numero", "complemento"}},
	{re: patterns.DistrictCEPCity, fields: []string{"bairro", "cep", "municipio"}},
	{fields: []string{"atividade"}},
	{re: patterns.WatershedLicense, fields: []string{"bacia_hidrografica", "licenca", "data_licenca"}},
}

var roleFields = map[entity.Role]map[string]bool{
	entity.RoleGenerator:   {"licenca": false, "data_licenca": false},
	entity.RoleDestination: {"funcionarios": false},
}

// Extract reads both entity sections and the document metadata.
func Extract(text string) Result {
	return Result{
		Generator:   Generator(text),
		Destination: Destination(text),
		Metadata:    Metadata(text),
	}
}

// Generator reads the section under "ENTIDADE GERADORA", or after the
// authenticity URL line on layouts without the heading.
func Generator(text string) *entity.Organization {
	loc := patterns.GeneratorHeading.FindStringIndex(text)
	if loc == nil {
		loc = patterns.AuthenticityLine.FindStringIndex(text)
	}
	if loc == nil {
		return nil
	}
	return readSection(section(text, loc[1]), entity.RoleGenerator, generatorSteps)
}

// Destination reads the section under "ENTIDADE DE DESTINAÇÃO".
func Destination(text string) *entity.Organization {
	loc := patterns.DestinationHeading.FindStringIndex(text)
	if loc == nil {
		return nil
	}
	return readSection(section(text, loc[1]), entity.RoleDestination, destinationSteps)
}

func section(text string, start int) string {
	end := patterns.WindowEnd(text, start, patterns.EntityWindow)
	if stop := patterns.StopIndex(text, start); stop < end {
		end = stop
	}
	return text[start:end]
}

func readSection(sec string, role entity.Role, steps []step) *entity.Organization {
	org := &entity.Organization{Role: role}

	var values []string
	for _, raw := range strings.Split(sec, "\n") {
		line := utils.CollapseSpaces(raw)
		if line == "" || patterns.IsPageMarker(line) {
			continue
		}
		if labelled(org, role, line) {
			continue
		}
		if patterns.IsLabelOnly(line) {
			continue
		}
		values = append(values, line)
	}

	cursor := 0
	for _, st := range steps {
		if cursor >= len(values) {
			break
		}
		if allFilled(org, st.fields) {
			continue
		}
		line := values[cursor]
		if st.re == nil {
			set(org, st.fields[0], line)
			cursor++
			continue
		}
		m := st.re.FindStringSubmatch(line)
		switch {
		case m != nil:
			for i, f := range st.fields {
				set(org, f, m[i+1])
			}
			cursor++
		case st.fallback != "":
			set(org, st.fallback, line)
			cursor++
		}
	}

	if org.Name != nil && org.State == nil {
		org.State = utils.Ptr("SP")
	}
	if org.IsZero() {
		return nil
	}
	return org
}

// labelled consumes a "Label : value" line.
func labelled(org *entity.Organization, role entity.Role, line string) bool {
	for _, l := range patterns.EntityLabels {
		if allowed, listed := roleFields[role][l.Field]; listed && !allowed {
			continue
		}
		if m := l.Re.FindStringSubmatch(line); m != nil {
			set(org, l.Field, m[1])
			return true
		}
	}
	return false
}

func set(org *entity.Organization, name, value string) {
	p := fieldPtr(org, name)
	if p == nil || *p != nil {
		return
	}
	*p = utils.NilIfEmpty(value)
}

func allFilled(org *entity.Organization, names []string) bool {
	for _, n := range names {
		if p := fieldPtr(org, n); p != nil && *p == nil {
			return false
		}
	}
	return true
}

func fieldPtr(o *entity.Organization, name string) **string {
	switch name {
	case "nome":
		return &o.Name
	case "cadastro_cetesb":
		return &o.Registration
	case "logradouro":
		return &o.Street
	case "numero":
		return &o.Number
	case "complemento":
		return &o.Complement
	case "bairro":
		return &o.District
	case "cep":
		return &o.PostalCode
	case "municipio":
		return &o.Municipality
	case "uf":
		return &o.State
	case "atividade":
		return &o.Activity
	case "bacia_hidrografica":
		return &o.Watershed
	case "funcionarios":
		return &o.Employees
	case "licenca":
		return &o.License
	case "data_licenca":
		return &o.LicenseDate
	}
	return nil
}

// Metadata reads the document header: process, certificate, version, dates and type.
func Metadata(text string) *entity.DocumentMetadata {
	md := &entity.DocumentMetadata{}
	if m := patterns.ProcessNumber.FindStringSubmatch(text); m != nil {
		md.ProcessNumber = utils.Ptr(m[1])
	}
	if m := patterns.CertificateNumber.FindStringSubmatch(text); m != nil {
		md.CertificateNumber = utils.Ptr(m[1])
	} else if m := patterns.CertificateLoose.FindStringSubmatch(text); m != nil {
		md.CertificateNumber = utils.Ptr(m[1])
	}
	if m := patterns.VersionDate.FindStringSubmatch(text); m != nil {
		md.Version = utils.Ptr(m[1])
		md.IssueDate = utils.Ptr(m[2])
	}
	if m := patterns.Validity.FindStringSubmatch(text); m != nil {
		md.ValidUntil = utils.Ptr(NormalizeDate(m[2]))
	}
	if dt, ok := DocumentType(text); ok {
		md.DocumentType = utils.Ptr(string(dt))
	}
	if md.IsZero() {
		return nil
	}
	return md
}

// DocumentType identifies the document from its first type mention.
func DocumentType(text string) (constants.DocumentType, bool) {
	m := patterns.DocumentType.FindString(text)
	if m == "" {
		return "", false
	}
	upper := strings.ToUpper(m)
	switch {
	case strings.Contains(upper, "CADRI"):
		return constants.DocTypeCADRI, true
	case strings.Contains(upper, "CERT"):
		return constants.DocTypeCertMovResiduos, true
	case strings.Contains(upper, "LICEN"):
		return constants.DocTypeLicenca, true
	}
	return "", false
}

// NormalizeDate turns dd/mm/yyyy or dd-mm-yyyy into YYYY-MM-DD. Unparseable
// dates are returned with '/' replaced by '-'.
func NormalizeDate(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "/", "-")
	t, err := time.Parse("02-01-2006", s)
	if err != nil {
		return s
	}
	return t.Format(time.DateOnly)
}
