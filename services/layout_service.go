package services

import (
	"github.com/4rk4ng3l/TowerFormsBackEnd/methods"
	"github.com/4rk4ng3l/TowerFormsBackEnd/models"
)

// Layout fixes everything site-type-specific about the main report sheet:
// palette, title-band height, checklist column schema and where each metadata
// field lands. Adding a site classification means adding a descriptor here,
// never new branching in the renderer.
type Layout struct {
	Primary   methods.RGB
	Secondary methods.RGB
	Accent    methods.RGB
	TitleRows int
	Columns   [9]ColumnSpec
	FirstRow  []FieldPlacement
	SecondRow []FieldPlacement
}

type ColumnSpec struct {
	Width  float64
	Header string
}

// FieldPlacement pins one semantic metadata field to a 1-indexed column.
// Span > 1 merges the cell across that many columns.
type FieldPlacement struct {
	Key   string
	Label string
	Col   int
	Span  int
}

var checklistColumns = [9]ColumnSpec{
	{18, "Actividad"},
	{25, "Descripción"},
	{35, "DEFINICION"},
	{20, "CLASIFICACIÓN HALLAZGO"},
	{15, "PERIODICIDAD"},
	{20, "OBSERVACIONES"},
	{20, ""},
	{20, ""},
	{20, ""},
}

var metaFirstRow = []FieldPlacement{
	{Key: "codigoSitio", Label: "CÓDIGO DEL SITIO", Col: 1, Span: 1},
	{Key: "nombreSitio", Label: "NOMBRE SITIO", Col: 2, Span: 2},
	{Key: "latitud", Label: "LATITUD", Col: 4, Span: 1},
	{Key: "longitud", Label: "LONGITUD", Col: 5, Span: 1},
	{Key: "direccion", Label: "DIRECCION", Col: 6, Span: 3},
	{Key: "regional", Label: "REGIONAL", Col: 9, Span: 1},
}

var metaSecondRow = []FieldPlacement{
	{Key: "tipoSitio", Label: "TIPO DE SITIO", Col: 1, Span: 1},
	{Key: "empresa", Label: "EMPRESA", Col: 2, Span: 1},
	{Key: "coordinador", Label: "COORDINADOR CONTRATISTA", Col: 3, Span: 2},
	{Key: "fechaEjecucion", Label: "FECHA DE EJECUCION", Col: 5, Span: 2},
	{Key: "numeroTK", Label: "NUMERO DE TK", Col: 7, Span: 2},
}

var layouts = map[string]Layout{
	models.SiteGreenfield: {
		Primary:   methods.RGB{R: 0x44, G: 0x72, B: 0xC4},
		Secondary: methods.RGB{R: 0xD9, G: 0xE1, B: 0xF2},
		Accent:    methods.RGB{R: 0x2F, G: 0x54, B: 0x96},
		TitleRows: 6,
		Columns:   checklistColumns,
		FirstRow:  metaFirstRow,
		SecondRow: metaSecondRow,
	},
	models.SiteRooftop: {
		Primary:   methods.RGB{R: 0x70, G: 0xAD, B: 0x47},
		Secondary: methods.RGB{R: 0xE2, G: 0xEF, B: 0xDA},
		Accent:    methods.RGB{R: 0x53, G: 0x80, B: 0x35},
		TitleRows: 5,
		Columns:   checklistColumns,
		FirstRow:  metaFirstRow,
		SecondRow: metaSecondRow,
	},
	models.SitePostevia: {
		Primary:   methods.RGB{R: 0xED, G: 0x7D, B: 0x31},
		Secondary: methods.RGB{R: 0xFC, G: 0xE4, B: 0xD6},
		Accent:    methods.RGB{R: 0xC5, G: 0x5A, B: 0x11},
		TitleRows: 5,
		Columns:   checklistColumns,
		FirstRow:  metaFirstRow,
		SecondRow: metaSecondRow,
	},
}

var defaultLayout = Layout{
	Primary:   methods.RGB{R: 0x80, G: 0x80, B: 0x80},
	Secondary: methods.RGB{R: 0xF2, G: 0xF2, B: 0xF2},
	Accent:    methods.RGB{R: 0x40, G: 0x40, B: 0x40},
	TitleRows: 4,
	Columns:   checklistColumns,
	FirstRow:  metaFirstRow,
	SecondRow: metaSecondRow,
}

// GetLayout resolves the layout for a site classification. Unknown or empty
// classifications fall back to the generic descriptor.
func GetLayout(siteType string) Layout {
	if l, ok := layouts[siteType]; ok {
		return l
	}
	return defaultLayout
}
