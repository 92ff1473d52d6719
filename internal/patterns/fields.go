package patterns

import "regexp"

var (
	// Compound matches the characteristic line printed inline:
	// "Classe : I Estado Físico: LIQUIDO O/I: O Qtde: 50 t/ano".
	Compound = regexp.MustCompile(`(?i:Classe)\s*:\s*([IVX]+[AB]?)\s+(?i:Estado\s+F[íi]sico)\s*:\s*(\pL+)\s+O/?I{1,2}\s*:\s*([IO/]+)\s+(?i:Qtde)\.?\s*:\s*(\d[\d.,]*)\s*(\pL+[³3]?)`)

	Class        = regexp.MustCompile(`(?i:Classe)\s*:\s*(I{1,2}\s?[AB]\b|I{1,3}\b)`)
	State        = regexp.MustCompile(`(?i:Estado\s+F[íi]sico)\s*:\s*(\pL+)`)
	Organic      = regexp.MustCompile(`\bO/?I{1,2}\s*:\s*([IO](?:/[IO])?)\b`)
	Quantity     = regexp.MustCompile(`(?i:Qtde)\.?\s*:\s*(\d[\d.,]*)\s*(\pL+[³3]?)?`)
	Destination  = regexp.MustCompile(`(?i:Destino)\s*:\s*(T\d{2})\s*[-–]?\s*`)
	GenericQty   = regexp.MustCompile(`(?i)(\d+[.,]?\d*)\s*(toneladas?|ton|t|kg|m3|m³|litros?|l|unidades?|un|peças?|pç)(?:[^\pL]|$)`)
	GenericClass = Class
)
