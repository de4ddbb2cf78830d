package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SubmissionMetadata is the decoded form of Submission.Metadata. The two
// structured sections the server acts on (ad-hoc inventory elements and
// torque samples) are lifted into typed fields; every other key stays in
// Extra verbatim so the renderer's alias lookup and round-tripping keep
// working for arbitrary form schemas.
type SubmissionMetadata struct {
	NewInventoryElements *InventoryPayload
	Torque               []TorqueSample
	Extra                map[string]interface{}
}

// InventoryPayload carries field-discovered inventory elements inside a sync
// payload. Elements stay open maps because edits patch only the keys present.
type InventoryPayload struct {
	EE []map[string]interface{} `json:"ee"`
	EP []map[string]interface{} `json:"ep"`
}

// TorqueSample is one bolt-sample cell of the torque matrix: a height band
// crossed with an element type.
type TorqueSample struct {
	Franja            string  `json:"franja"`
	Elemento          string  `json:"elemento"`
	CantidadTornillos int     `json:"cantidadTornillos"`
	NoPasan           int     `json:"noPasan"`
	DiametroPerno     string  `json:"diametroPerno"`
	TorqueAplicado    float64 `json:"torqueAplicado"`
}

func (m *SubmissionMetadata) UnmarshalJSON(b []byte) error {
	raw := map[string]interface{}{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	if v, ok := raw["newInventoryElements"]; ok {
		buf, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var inv InventoryPayload
		if err := json.Unmarshal(buf, &inv); err != nil {
			return fmt.Errorf("newInventoryElements: %v", err)
		}
		m.NewInventoryElements = &inv
		delete(raw, "newInventoryElements")
	}

	if v, ok := raw["torque"]; ok {
		buf, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var samples []TorqueSample
		if err := json.Unmarshal(buf, &samples); err != nil {
			return fmt.Errorf("torque: %v", err)
		}
		m.Torque = samples
		delete(raw, "torque")
	}

	m.Extra = raw
	return nil
}

func (m SubmissionMetadata) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{}
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.NewInventoryElements != nil {
		out["newInventoryElements"] = m.NewInventoryElements
	}
	if m.Torque != nil {
		out["torque"] = m.Torque
	}
	return json.Marshal(out)
}

// DecodeMetadata parses a Submission.Metadata column. Empty columns decode to
// an empty bag, not an error.
func DecodeMetadata(raw []byte) (SubmissionMetadata, error) {
	meta := SubmissionMetadata{Extra: map[string]interface{}{}}
	if len(raw) == 0 {
		return meta, nil
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return meta, err
	}
	return meta, nil
}

// MetaAliases maps each semantic report field to its accepted key spellings,
// tried in order. The list mirrors what devices have historically sent.
var MetaAliases = map[string][]string{
	"codigoSitio":            {"codigoSitio", "siteCode", "codigo", "codigoTowernex"},
	"nombreSitio":            {"nombreSitio", "siteName"},
	"latitud":                {"latitud", "latitude"},
	"longitud":               {"longitud", "longitude"},
	"direccion":              {"direccion", "address"},
	"regional":               {"regional", "region"},
	"tipoSitio":              {"tipoSitio", "siteType"},
	"empresa":                {"empresa", "company"},
	"coordinador":            {"coordinador", "coordinator"},
	"numeroTK":               {"numeroTK", "ticketNumber"},
	"observacionesGenerales": {"observacionesGenerales", "generalObservations"},
}

// Lookup resolves a semantic field through its alias chain. The second
// return reports whether any alias produced a non-empty value.
func (m SubmissionMetadata) Lookup(field string) (string, bool) {
	aliases, ok := MetaAliases[field]
	if !ok {
		aliases = []string{field}
	}
	for _, key := range aliases {
		v, ok := m.Extra[key]
		if !ok || v == nil {
			continue
		}
		s := stringify(v)
		if s != "" {
			return s, true
		}
	}
	return "", false
}

// LookupOr resolves a field with a literal fallback, the renderer's "N/A"
// path.
func (m SubmissionMetadata) LookupOr(field, fallback string) string {
	if v, ok := m.Lookup(field); ok {
		return v
	}
	return fallback
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		// JSON numbers; trim the trailing zeros floats pick up.
		s := fmt.Sprintf("%g", t)
		return s
	case bool:
		return fmt.Sprintf("%t", t)
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}
