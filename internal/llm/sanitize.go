package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"strconv"
	"strings"
)

var (
	topLevelKeys = set("numero_documento", "total_items", "items", "extraction_method", "processed_at")

	itemStringKeys = set(
		"numero_documento", "item_numero", "numero_residuo", "descricao_residuo", "origem_residuo",
		"classe_residuo", "estado_fisico", "oii", "quantidade", "unidade", "composicao_aproximada",
		"metodo_utilizado", "cor_cheiro_aspecto", "destino_codigo", "destino_descricao", "raw_fragment",
	)
	// list fields and the separator used when the model returns them as one string
	itemListKeys = map[string]string{
		"acondicionamento_codigos":    ",",
		"acondicionamento_descricoes": " | ",
	}

	generatorKeys = set("nome", "cadastro_cetesb", "logradouro", "numero", "complemento", "bairro",
		"cep", "municipio", "uf", "atividade", "bacia_hidrografica", "funcionarios")
	destinationKeys = set("nome", "cadastro_cetesb", "logradouro", "numero", "complemento", "bairro",
		"cep", "municipio", "uf", "atividade", "bacia_hidrografica", "licenca", "data_licenca")
	metadataKeys = set("numero_processo", "numero_certificado", "versao_documento", "data_documento",
		"data_validade", "tipo_documento")

	itemObjectKeys = map[string]map[string]struct{}{
		"entidade_geradora":   generatorKeys,
		"entidade_destinacao": destinationKeys,
		"dados_documento":     metadataKeys,
	}
)

func set(keys ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	return m
}

// NormalizeAndSanitizeJSON brings a model reply into the shape the schema
// accepts without rejecting recoverable differences:
//   - numbers become strings for text fields and ints for page/total
//   - "E01,E04" strings become lists
//   - null and empty values are dropped
//   - unknown keys are dropped
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var dropped []string
	drop := func(path, why string) { dropped = append(dropped, path+"("+why+")") }

	for k := range maps.Clone(m) {
		if _, ok := topLevelKeys[k]; !ok {
			delete(m, k)
			drop(k, "unknown")
		}
	}
	for _, k := range []string{"numero_documento", "extraction_method", "processed_at"} {
		coerceString(m, k, k, drop)
	}
	coerceInt(m, "total_items", "total_items", drop)

	if v, ok := m["items"]; ok {
		list, isList := v.([]any)
		if !isList {
			delete(m, "items")
			drop("items", "type")
		} else {
			kept := make([]any, 0, len(list))
			for i, raw := range list {
				obj, isObj := raw.(map[string]any)
				path := fmt.Sprintf("items[%d]", i)
				if !isObj {
					drop(path, "type")
					continue
				}
				sanitizeItem(obj, path, drop)
				kept = append(kept, obj)
			}
			m["items"] = kept
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.normalize_sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}

func sanitizeItem(obj map[string]any, path string, drop func(string, string)) {
	for k := range maps.Clone(obj) {
		p := path + "." + k
		if _, ok := itemStringKeys[k]; ok {
			coerceString(obj, k, p, drop)
			continue
		}
		if sep, ok := itemListKeys[k]; ok {
			coerceList(obj, k, sep, p, drop)
			continue
		}
		if allowed, ok := itemObjectKeys[k]; ok {
			sub, isObj := obj[k].(map[string]any)
			if !isObj {
				delete(obj, k)
				drop(p, "type")
				continue
			}
			for sk := range maps.Clone(sub) {
				if _, ok := allowed[sk]; !ok {
					delete(sub, sk)
					drop(p+"."+sk, "unknown")
					continue
				}
				coerceString(sub, sk, p+"."+sk, drop)
			}
			if len(sub) == 0 {
				delete(obj, k)
			}
			continue
		}
		if k == "pagina_origem" {
			coerceInt(obj, k, p, drop)
			continue
		}
		delete(obj, k)
		drop(p, "unknown")
	}
}

func coerceString(m map[string]any, k, path string, drop func(string, string)) {
	v, ok := m[k]
	if !ok {
		return
	}
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" || strings.EqualFold(s, "null") {
			delete(m, k)
			drop(path, "empty")
			return
		}
		m[k] = s
	case float64:
		m[k] = strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		m[k] = strconv.FormatBool(t)
	case nil:
		delete(m, k)
		drop(path, "null")
	default:
		delete(m, k)
		drop(path, "type")
	}
}

func coerceInt(m map[string]any, k, path string, drop func(string, string)) {
	v, ok := m[k]
	if !ok {
		return
	}
	switch t := v.(type) {
	case float64:
		if t == math.Trunc(t) {
			m[k] = int(t)
			return
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			m[k] = n
			return
		}
	}
	delete(m, k)
	drop(path, "type")
}

// coerceList keeps empty descriptions so they stay aligned with their codes.
func coerceList(m map[string]any, k, sep, path string, drop func(string, string)) {
	keepEmpty := k == "acondicionamento_descricoes"
	var parts []string
	nonEmpty := 0
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" && !keepEmpty {
			return
		}
		if s != "" {
			nonEmpty++
		}
		parts = append(parts, s)
	}
	switch t := m[k].(type) {
	case string:
		for _, p := range strings.Split(t, sep) {
			add(p)
		}
	case []any:
		for _, e := range t {
			switch ev := e.(type) {
			case string:
				add(ev)
			case float64:
				add(strconv.FormatFloat(ev, 'f', -1, 64))
			case nil:
				add("")
			}
		}
	}
	if nonEmpty == 0 {
		delete(m, k)
		drop(path, "empty")
		return
	}
	out := make([]any, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	m[k] = out
}
