package constants

// ExtractionMethod tags which strategy produced an ExtractionResult.
type ExtractionMethod string

const (
	MethodStructured ExtractionMethod = "structured"
	MethodFlexible   ExtractionMethod = "flexible"
	MethodLLM        ExtractionMethod = "llm"
)

// DocumentType is the normalized document type tag found in metadata.
type DocumentType string

const (
	DocTypeCADRI           DocumentType = "CADRI"
	DocTypeCertMovResiduos DocumentType = "CERT_MOV_RESIDUOS"
	DocTypeLicenca         DocumentType = "LICENCA"
)
