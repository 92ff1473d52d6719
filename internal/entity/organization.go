package entity

// Role of an organization on a certificate.
type Role string

const (
	RoleGenerator   Role = "generator"
	RoleDestination Role = "destination"
)

// Organization holds the registration data of the generator or the destination.
// Both roles share the shape; Employees is only printed for generators and
// License/LicenseDate only for destinations.
type Organization struct {
	Role         Role    `json:"-"`
	Name         *string `json:"nome,omitempty"`
	Registration *string `json:"cadastro_cetesb,omitempty"`
	Street       *string `json:"logradouro,omitempty"`
	Number       *string `json:"numero,omitempty"`
	Complement   *string `json:"complemento,omitempty"`
	District     *string `json:"bairro,omitempty"`
	PostalCode   *string `json:"cep,omitempty"`
	Municipality *string `json:"municipio,omitempty"`
	State        *string `json:"uf,omitempty"`
	Activity     *string `json:"atividade,omitempty"`
	Watershed    *string `json:"bacia_hidrografica,omitempty"`
	Employees    *string `json:"funcionarios,omitempty"`
	License      *string `json:"licenca,omitempty"`
	LicenseDate  *string `json:"data_licenca,omitempty"`
}

// IsZero reports whether no field was filled.
func (o *Organization) IsZero() bool {
	if o == nil {
		return true
	}
	for _, p := range o.fields() {
		if *p != nil {
			return false
		}
	}
	return true
}

// Merge fills every field of o that is nil from other. o wins on conflicts.
func (o *Organization) Merge(other *Organization) {
	if o == nil || other == nil {
		return
	}
	mine, theirs := o.fields(), other.fields()
	for i := range mine {
		if *mine[i] == nil && *theirs[i] != nil {
			*mine[i] = *theirs[i]
		}
	}
}

func (o *Organization) fields() []**string {
	return []**string{
		&o.Name, &o.Registration, &o.Street, &o.Number, &o.Complement, &o.District,
		&o.PostalCode, &o.Municipality, &o.State, &o.Activity, &o.Watershed,
		&o.Employees, &o.License, &o.LicenseDate,
	}
}

// DocumentMetadata is extracted once per document.
type DocumentMetadata struct {
	ProcessNumber     *string `json:"numero_processo,omitempty"`
	CertificateNumber *string `json:"numero_certificado,omitempty"`
	Version           *string `json:"versao_documento,omitempty"`
	IssueDate         *string `json:"data_documento,omitempty"`
	ValidUntil        *string `json:"data_validade,omitempty"` // YYYY-MM-DD when parseable
	DocumentType      *string `json:"tipo_documento,omitempty"`
}

// IsZero reports whether no field was filled.
func (m *DocumentMetadata) IsZero() bool {
	if m == nil {
		return true
	}
	for _, p := range m.fields() {
		if *p != nil {
			return false
		}
	}
	return true
}

// Merge fills every nil field of m from other.
func (m *DocumentMetadata) Merge(other *DocumentMetadata) {
	if m == nil || other == nil {
		return
	}
	mine, theirs := m.fields(), other.fields()
	for i := range mine {
		if *mine[i] == nil && *theirs[i] != nil {
			*mine[i] = *theirs[i]
		}
	}
}

func (m *DocumentMetadata) fields() []**string {
	return []**string{
		&m.ProcessNumber, &m.CertificateNumber, &m.Version,
		&m.IssueDate, &m.ValidUntil, &m.DocumentType,
	}
}
