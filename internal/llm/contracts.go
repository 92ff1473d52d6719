package llm

import (
	"context"
	"time"

	"github.com/joseph-ayodele/cadri-extractor/internal/entity"
)

// Completer sends one system+user exchange to a model and returns the raw text reply.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, system, user string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}

// Response is a parsed, sanitized model reply.
type Response struct {
	DocumentID  string
	TotalItems  int // always len(Items)
	Items       []entity.WasteItem
	ProcessedAt time.Time
	Raw         []byte // JSON after repair and sanitize
}

// wireResult is the JSON document the model is asked to return.
type wireResult struct {
	DocumentID  string     `json:"numero_documento"`
	TotalItems  int        `json:"total_items"`
	Items       []wireItem `json:"items"`
	Method      string     `json:"extraction_method"`
	ProcessedAt string     `json:"processed_at"`
}

type wireItem struct {
	DocumentID             string                   `json:"numero_documento"`
	ItemIndex              string                   `json:"item_numero"`
	ResidueCode            *string                  `json:"numero_residuo"`
	Description            *string                  `json:"descricao_residuo"`
	Origin                 *string                  `json:"origem_residuo"`
	Class                  *string                  `json:"classe_residuo"`
	PhysicalState          *string                  `json:"estado_fisico"`
	OrganicFlag            *string                  `json:"oii"`
	Quantity               *string                  `json:"quantidade"`
	Unit                   *string                  `json:"unidade"`
	Composition            *string                  `json:"composicao_aproximada"`
	Method                 *string                  `json:"metodo_utilizado"`
	Appearance             *string                  `json:"cor_cheiro_aspecto"`
	PackagingCodes         []string                 `json:"acondicionamento_codigos"`
	PackagingDescriptions  []string                 `json:"acondicionamento_descricoes"`
	DestinationCode        *string                  `json:"destino_codigo"`
	DestinationDescription *string                  `json:"destino_descricao"`
	SourcePage             *int                     `json:"pagina_origem"`
	RawFragment            *string                  `json:"raw_fragment"`
	Generator              *entity.Organization     `json:"entidade_geradora"`
	Destination            *entity.Organization     `json:"entidade_destinacao"`
	Metadata               *entity.DocumentMetadata `json:"dados_documento"`
}
