package methods

import (
	"fmt"
	"strings"
)

// Canonical classification labels used in the report's hallazgo column.
const (
	ClassOK       = "OK-Sin Incidencia"
	ClassNOKGrave = "NOK-Grave"
	ClassNOKLeve  = "NOK-Leve"
	ClassNA       = "NA"
	ClassNoAnswer = "No respondido"
)

// ClassifyAnswer maps a raw answer value to a classification label by fuzzy
// token matching. Unknown values pass through verbatim; arrays join with
// ", ". Kept as a single pure function so the whole table stays testable.
func ClassifyAnswer(value interface{}) string {
	if value == nil {
		return ClassNoAnswer
	}

	if arr, ok := value.([]string); ok {
		if len(arr) == 1 {
			return ClassifyAnswer(arr[0])
		}
		return strings.Join(arr, ", ")
	}
	if arr, ok := value.([]interface{}); ok {
		parts := make([]string, 0, len(arr))
		for _, v := range arr {
			parts = append(parts, fmt.Sprintf("%v", v))
		}
		if len(parts) == 1 {
			return ClassifyAnswer(parts[0])
		}
		return strings.Join(parts, ", ")
	}

	raw := fmt.Sprintf("%v", value)
	lower := strings.ToLower(raw)

	switch lower {
	case "ok", "si", "sí", "true", "bueno", "ok-sin incidencia":
		return ClassOK
	}
	if lower == "nok" || lower == "no" || lower == "false" || lower == "malo" || strings.Contains(lower, "nok") {
		if strings.Contains(lower, "grave") || strings.Contains(lower, "critico") {
			return ClassNOKGrave
		}
		return ClassNOKLeve
	}
	switch lower {
	case "na", "n/a", "no aplica":
		return ClassNA
	}

	return raw
}

// RGB is a plain color triple for spreadsheet fills and fonts.
type RGB struct {
	R, G, B uint8
}

// ClassificationColor returns the fill and font colors for a classification
// label. ok is false when the label gets no special fill (pass-through
// values and "No respondido").
func ClassificationColor(label string) (fill RGB, font RGB, ok bool) {
	upper := strings.ToUpper(label)
	switch {
	case strings.Contains(upper, "OK-SIN INCIDENCIA") || upper == "OK":
		return RGB{0xC6, 0xEF, 0xCE}, RGB{0x00, 0x61, 0x00}, true
	case strings.Contains(upper, "NOK-GRAVE"):
		return RGB{0xFF, 0xC7, 0xCE}, RGB{0x9C, 0x00, 0x06}, true
	case strings.Contains(upper, "NOK-LEVE"):
		return RGB{0xFF, 0xEB, 0x9C}, RGB{0x9C, 0x57, 0x00}, true
	case upper == "NA" || upper == "N/A":
		return RGB{0xD9, 0xD9, 0xD9}, RGB{0x40, 0x40, 0x40}, true
	}
	return RGB{}, RGB{}, false
}
