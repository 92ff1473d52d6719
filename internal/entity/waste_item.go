package entity

// WasteItem is one authorized waste item of a certificate.
// Every optional field is nil when absent; nothing is guessed.
type WasteItem struct {
	DocumentID string `json:"numero_documento"`
	ItemIndex  string `json:"item_numero"`

	ResidueCode   *string `json:"numero_residuo,omitempty"`
	LegacyCode    *string `json:"codigo_residuo_legado,omitempty"`
	Description   *string `json:"descricao_residuo,omitempty"`
	Origin        *string `json:"origem_residuo,omitempty"`
	Class         *string `json:"classe_residuo,omitempty"`
	PhysicalState *string `json:"estado_fisico,omitempty"`
	OrganicFlag   *string `json:"oii,omitempty"`
	Quantity      *string `json:"quantidade,omitempty"`
	Unit          *string `json:"unidade,omitempty"`
	Composition   *string `json:"composicao_aproximada,omitempty"`
	Method        *string `json:"metodo_utilizado,omitempty"`
	Appearance    *string `json:"cor_cheiro_aspecto,omitempty"`

	PackagingCodes        []string `json:"acondicionamento_codigos,omitempty"`
	PackagingDescriptions []string `json:"acondicionamento_descricoes,omitempty"` // aligned to PackagingCodes

	DestinationCode        *string `json:"destino_codigo,omitempty"`
	DestinationDescription *string `json:"destino_descricao,omitempty"`

	SourcePage  *int    `json:"pagina_origem,omitempty"`
	RawFragment *string `json:"raw_fragment,omitempty"`

	// Shared by every item of the same document.
	Generator   *Organization     `json:"entidade_geradora,omitempty"`
	Destination *Organization     `json:"entidade_destinacao,omitempty"`
	Metadata    *DocumentMetadata `json:"dados_documento,omitempty"`
}

// Code returns the residue code, falling back to the legacy code.
func (w WasteItem) Code() string {
	if w.ResidueCode != nil {
		return *w.ResidueCode
	}
	if w.LegacyCode != nil {
		return *w.LegacyCode
	}
	return ""
}
