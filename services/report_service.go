package services

import (
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gitee.com/gooffice/gooffice/color"
	"gitee.com/gooffice/gooffice/measurement"
	"gitee.com/gooffice/gooffice/schema/soo/sml"
	"gitee.com/gooffice/gooffice/spreadsheet"
	"github.com/4rk4ng3l/TowerFormsBackEnd/methods"
	"github.com/4rk4ng3l/TowerFormsBackEnd/models"
)

// ExportResult names a rendered artifact on disk plus the filename the
// client should present to the user.
type ExportResult struct {
	Path        string
	DisplayName string
}

// WorkbookBuilder 报表工作簿构建器. Wraps a gooffice workbook with the
// site-type layout and a style cache so repeated cells share xf records.
type WorkbookBuilder struct {
	wb     *spreadsheet.Workbook
	layout Layout
	styles map[string]spreadsheet.CellStyle
}

func NewWorkbookBuilder(layout Layout) *WorkbookBuilder {
	return &WorkbookBuilder{
		wb:     spreadsheet.New(),
		layout: layout,
		styles: map[string]spreadsheet.CellStyle{},
	}
}

func (b *WorkbookBuilder) SaveAndClose(path string) error {
	defer b.wb.Close()
	return b.wb.SaveToFile(path)
}

func (b *WorkbookBuilder) Close() {
	b.wb.Close()
}

// style returns a cached cell style. fill nil means no fill; size 0 keeps
// the default font size.
func (b *WorkbookBuilder) style(fill *methods.RGB, font methods.RGB, bold bool, size float64, center, wrap bool) spreadsheet.CellStyle {
	key := fmt.Sprintf("%v|%v|%t|%v|%t|%t", fill, font, bold, size, center, wrap)
	if cs, ok := b.styles[key]; ok {
		return cs
	}

	cs := b.wb.StyleSheet.AddCellStyle()

	fnt := b.wb.StyleSheet.AddFont()
	fnt.SetName("Calibri")
	fnt.SetBold(bold)
	if size > 0 {
		fnt.SetSize(size)
	}
	fnt.SetColor(color.RGB(font.R, font.G, font.B))
	cs.SetFont(fnt)

	if fill != nil {
		fl := b.wb.StyleSheet.Fills().AddFill()
		pf := fl.SetPatternFill()
		pf.SetPattern(sml.ST_PatternTypeSolid)
		pf.SetFgColor(color.RGB(fill.R, fill.G, fill.B))
		cs.SetFill(fl)
	}

	bd := b.wb.StyleSheet.AddBorder()
	thin := color.RGB(0xBF, 0xBF, 0xBF)
	bd.SetLeft(sml.ST_BorderStyleThin, thin)
	bd.SetRight(sml.ST_BorderStyleThin, thin)
	bd.SetTop(sml.ST_BorderStyleThin, thin)
	bd.SetBottom(sml.ST_BorderStyleThin, thin)
	cs.SetBorder(bd)

	if center {
		cs.SetHorizontalAlignment(sml.ST_HorizontalAlignmentCenter)
	}
	cs.SetVerticalAlignment(sml.ST_VerticalAlignmentCenter)
	cs.SetWrapped(wrap)

	b.styles[key] = cs
	return cs
}

func (b *WorkbookBuilder) setCell(sheet spreadsheet.Sheet, col, row int, text string, cs spreadsheet.CellStyle) {
	cell := sheet.Cell(methods.CellRef(col, row))
	cell.SetString(text)
	cell.SetStyle(cs)
}

func (b *WorkbookBuilder) merge(sheet spreadsheet.Sheet, fromCol, fromRow, toCol, toRow int) {
	sheet.AddMergedCells(methods.CellRef(fromCol, fromRow), methods.CellRef(toCol, toRow))
}

// RenderSubmissionExcel renders the full inspection report workbook for one
// submission and writes it under outDir. Inventory and torque sheets are
// optional and each failure there is swallowed so the main checklist always
// ships.
func RenderSubmissionExcel(agg *ExportAggregate, outDir string) (*ExportResult, error) {
	layout := GetLayout(resolveSiteType(agg))
	b := NewWorkbookBuilder(layout)

	if err := b.addMainSheet(agg); err != nil {
		b.Close()
		return nil, err
	}

	if agg.Form.HasInventory && agg.Site != nil {
		if err := b.addEESheet(agg); err != nil {
			log.Printf("Skipping EE inventory sheet for submission %s: %v", agg.Submission.ID, err)
		}
		if err := b.addEPSheet(agg); err != nil {
			log.Printf("Skipping EP inventory sheet for submission %s: %v", agg.Submission.ID, err)
		}
	}
	if agg.Form.HasTorque && len(agg.Meta.Torque) > 0 {
		if err := b.addTorqueSheet(agg); err != nil {
			log.Printf("Skipping torque sheet for submission %s: %v", agg.Submission.ID, err)
		}
	}

	storage := fmt.Sprintf("submission_%s_excel_%d.xlsx", agg.Submission.ID, time.Now().UnixMilli())
	path := filepath.Join(outDir, storage)
	if err := b.SaveAndClose(path); err != nil {
		return nil, err
	}

	display := fmt.Sprintf("Inspeccion_%s_%s.xlsx",
		methods.SanitizeFileName(agg.Form.Name), time.Now().Format("2006-01-02"))
	return &ExportResult{Path: path, DisplayName: display}, nil
}

// resolveSiteType picks the layout key: what the technician recorded on
// site wins over the stored site row and the form default.
func resolveSiteType(agg *ExportAggregate) string {
	if v, ok := agg.Meta.Lookup("tipoSitio"); ok {
		return strings.ToUpper(v)
	}
	if agg.Site != nil && agg.Site.SiteType != "" {
		return agg.Site.SiteType
	}
	return agg.Form.SiteType
}

// metaValue resolves a report metadata field through the alias chain with
// "N/A" as the fallback. The execution date is always stamped server-side;
// empresa and coordinador are derived only when the device sent nothing.
func metaValue(agg *ExportAggregate, key string) string {
	if key == "fechaEjecucion" {
		at := agg.Submission.CompletedAt
		if at == nil {
			t := agg.Submission.StartedAt
			at = &t
		}
		return at.Format("02/01/2006 15:04")
	}

	if v, ok := agg.Meta.Lookup(key); ok {
		return v
	}
	switch key {
	case "empresa":
		return "IENERCOM"
	case "coordinador":
		if agg.User != nil {
			return agg.User.FullName()
		}
	}
	return "N/A"
}

func (b *WorkbookBuilder) addMainSheet(agg *ExportAggregate) error {
	sheet := b.wb.AddSheet()
	sheet.SetName("Rutina Mantenimiento")
	lay := b.layout

	for i, col := range lay.Columns {
		sheet.Column(uint32(i + 1)).SetWidth(measurement.Distance(col.Width) * measurement.Character)
	}

	white := methods.RGB{R: 0xFF, G: 0xFF, B: 0xFF}
	black := methods.RGB{R: 0x00, G: 0x00, B: 0x00}
	titleStyle := b.style(&lay.Primary, white, true, 16, true, true)
	labelStyle := b.style(&lay.Primary, white, true, 0, true, false)
	valueStyle := b.style(&lay.Secondary, black, false, 0, true, true)
	headerStyle := b.style(&lay.Accent, white, true, 0, true, true)
	plainStyle := b.style(nil, black, false, 0, false, true)
	tintStyle := b.style(&lay.Secondary, black, false, 0, false, true)

	// Title band.
	title := "RUTINA MANTENIMIENTO PREVENTIVO - " + strings.ToUpper(agg.Form.Name)
	b.setCell(sheet, 1, 1, title, titleStyle)
	b.merge(sheet, 1, 1, 9, lay.TitleRows)
	sheet.Row(1).SetHeight(24 * measurement.Point)

	// Two label/value metadata bands.
	row := lay.TitleRows + 1
	row = b.metaBand(sheet, agg, lay.FirstRow, row, labelStyle, valueStyle)
	row = b.metaBand(sheet, agg, lay.SecondRow, row, labelStyle, valueStyle)

	// General observations block.
	row++
	b.setCell(sheet, 1, row, "OBSERVACIONES GENERALES", labelStyle)
	b.merge(sheet, 1, row, 9, row)
	row++
	b.setCell(sheet, 1, row, agg.Meta.LookupOr("observacionesGenerales", ""), plainStyle)
	b.merge(sheet, 1, row, 9, row+9)
	row += 10

	// Checklist header. The observation header spans the trailing columns.
	row++
	for i, col := range lay.Columns {
		if i+1 > 6 {
			break
		}
		b.setCell(sheet, i+1, row, col.Header, headerStyle)
	}
	b.merge(sheet, 6, row, 9, row)

	// One row per (step, question) pair, in declared order.
	byQuestion := agg.AnswerByQuestion()
	fileCounts := agg.FileCountByQuestion()
	dataIdx := 0
	for _, step := range agg.Form.OrderedSteps() {
		for _, q := range step.Questions {
			row++
			dataIdx++
			base := plainStyle
			if dataIdx%2 == 0 {
				base = tintStyle
			}

			b.setCell(sheet, 1, row, step.Title, base)
			b.setCell(sheet, 2, row, q.QuestionText, base)
			b.setCell(sheet, 3, row, questionDefinition(q), base)
			b.renderClassification(sheet, row, q, byQuestion, base)
			b.setCell(sheet, 5, row, periodicity(q), base)
			b.setCell(sheet, 6, row, observation(q, byQuestion, fileCounts), base)
			b.merge(sheet, 6, row, 9, row)
		}
	}

	// Footer.
	row += 2
	boldStyle := b.style(nil, black, true, 0, false, false)
	b.setCell(sheet, 1, row, "INSPECTOR:", boldStyle)
	b.setCell(sheet, 2, row, inspectorName(agg), plainStyle)
	b.merge(sheet, 2, row, 3, row)
	b.setCell(sheet, 4, row, "EMAIL:", boldStyle)
	b.setCell(sheet, 5, row, inspectorEmail(agg), plainStyle)
	b.merge(sheet, 5, row, 6, row)
	b.setCell(sheet, 7, row, "FECHA EXPORTACIÓN:", boldStyle)
	b.setCell(sheet, 8, row, time.Now().Format("02/01/2006 15:04"), plainStyle)
	b.merge(sheet, 8, row, 9, row)

	return nil
}

// metaBand writes one label row plus one value row honoring the layout's
// column spans, and returns the next free row.
func (b *WorkbookBuilder) metaBand(sheet spreadsheet.Sheet, agg *ExportAggregate, fields []FieldPlacement, row int, labelStyle, valueStyle spreadsheet.CellStyle) int {
	for _, f := range fields {
		b.setCell(sheet, f.Col, row, f.Label, labelStyle)
		b.setCell(sheet, f.Col, row+1, metaValue(agg, f.Key), valueStyle)
		if f.Span > 1 {
			b.merge(sheet, f.Col, row, f.Col+f.Span-1, row)
			b.merge(sheet, f.Col, row+1, f.Col+f.Span-1, row+1)
		}
	}
	return row + 2
}

func (b *WorkbookBuilder) renderClassification(sheet spreadsheet.Sheet, row int, q models.Question, byQuestion map[string]models.Answer, base spreadsheet.CellStyle) {
	label := methods.ClassifyAnswer(answerValue(q, byQuestion))

	cs := base
	if fill, font, ok := methods.ClassificationColor(label); ok {
		cs = b.style(&fill, font, true, 0, true, true)
	}
	b.setCell(sheet, 4, row, label, cs)
}

// answerValue extracts the raw value driving classification: the text for
// text answers, the decoded selection for choice answers, nil when the
// question was never answered.
func answerValue(q models.Question, byQuestion map[string]models.Answer) interface{} {
	ans, ok := byQuestion[q.ID]
	if !ok {
		return nil
	}
	if ans.IsTextAnswer() {
		return *ans.TextValue
	}
	if ans.IsChoiceAnswer() {
		var values []string
		if err := json.Unmarshal(ans.ChoiceValue, &values); err == nil {
			return values
		}
	}
	return nil
}

func questionDefinition(q models.Question) string {
	if q.Description != nil && *q.Description != "" {
		return *q.Description
	}
	if v := q.MetaString("definicion"); v != "" {
		return v
	}
	return q.QuestionText
}

func periodicity(q models.Question) string {
	if v := q.MetaString("periodicidad"); v != "" {
		return v
	}
	return "ANUAL"
}

func observation(q models.Question, byQuestion map[string]models.Answer, fileCounts map[string]int) string {
	var text string
	if ans, ok := byQuestion[q.ID]; ok && ans.Comment != nil {
		text = *ans.Comment
	}
	if n := fileCounts[q.ID]; n > 0 {
		suffix := fmt.Sprintf("[%d archivo(s) adjunto(s)]", n)
		if text != "" {
			text += " " + suffix
		} else {
			text = suffix
		}
	}
	return text
}

func inspectorName(agg *ExportAggregate) string {
	if agg.User != nil {
		return agg.User.FullName()
	}
	return "N/A"
}

func inspectorEmail(agg *ExportAggregate) string {
	if agg.User != nil {
		return agg.User.Email
	}
	return "N/A"
}

var eeSheetHeaders = []string{
	"ID EE", "Tipo EE", "Tipo Soporte", "Situación", "Situación RRU",
	"Modelo", "Fabricante", "Operador Propietario", "Altura Antena (m)",
	"Azimut (°)", "EPA (m²)", "Sistema Móvil", "Observaciones",
}

func (b *WorkbookBuilder) addEESheet(agg *ExportAggregate) error {
	sheet := b.wb.AddSheet()
	sheet.SetName("Inventario EE")

	white := methods.RGB{R: 0xFF, G: 0xFF, B: 0xFF}
	black := methods.RGB{R: 0x00, G: 0x00, B: 0x00}
	headerStyle := b.style(&b.layout.Primary, white, true, 0, true, true)
	cellStyle := b.style(nil, black, false, 0, false, true)

	for i, h := range eeSheetHeaders {
		b.setCell(sheet, i+1, 1, h, headerStyle)
		sheet.Column(uint32(i + 1)).SetWidth(18 * measurement.Character)
	}

	for i, ee := range agg.EE {
		row := i + 2
		values := []string{
			strconv.Itoa(ee.IdEE),
			ee.TipoEE,
			strOrEmpty(ee.TipoSoporte),
			ee.Situacion,
			strOrEmpty(ee.SituacionRRU),
			strOrEmpty(ee.Modelo),
			strOrEmpty(ee.Fabricante),
			strOrEmpty(ee.OperadorPropietario),
			floatOrEmpty(ee.AlturaAntena),
			floatOrEmpty(ee.Azimut),
			floatOrEmpty(ee.EpaM2),
			strOrEmpty(ee.SistemaMovil),
			strOrEmpty(ee.Observaciones),
		}
		for col, v := range values {
			b.setCell(sheet, col+1, row, v, cellStyle)
		}
	}
	return nil
}

var epSheetHeaders = []string{
	"ID EP", "Tipo Piso", "Ubicación Equipo", "Situación", "Estado Piso",
	"Modelo", "Fabricante", "Uso EP", "Operador Propietario",
	"Ancho (m)", "Profundidad (m)", "Altura (m)", "Superficie (m²)", "Observaciones",
}

func (b *WorkbookBuilder) addEPSheet(agg *ExportAggregate) error {
	sheet := b.wb.AddSheet()
	sheet.SetName("Inventario EP")

	white := methods.RGB{R: 0xFF, G: 0xFF, B: 0xFF}
	black := methods.RGB{R: 0x00, G: 0x00, B: 0x00}
	headerStyle := b.style(&b.layout.Primary, white, true, 0, true, true)
	cellStyle := b.style(nil, black, false, 0, false, true)

	for i, h := range epSheetHeaders {
		b.setCell(sheet, i+1, 1, h, headerStyle)
		sheet.Column(uint32(i + 1)).SetWidth(16 * measurement.Character)
	}

	for i, ep := range agg.EP {
		row := i + 2
		values := []string{
			strconv.Itoa(ep.IdEP),
			strOrEmpty(ep.TipoPiso),
			strOrEmpty(ep.UbicacionEquipo),
			ep.Situacion,
			strOrEmpty(ep.EstadoPiso),
			strOrEmpty(ep.Modelo),
			strOrEmpty(ep.Fabricante),
			strOrEmpty(ep.UsoEP),
			strOrEmpty(ep.OperadorPropietario),
			floatOrEmpty(ep.Ancho),
			floatOrEmpty(ep.Profundidad),
			floatOrEmpty(ep.Altura),
			floatOrEmpty(ep.SuperficieOcupada),
			strOrEmpty(ep.Observaciones),
		}
		for col, v := range values {
			b.setCell(sheet, col+1, row, v, cellStyle)
		}
	}
	return nil
}

// addTorqueSheet prints the fixed Franjas × ElementoTypes matrix with a
// compliance column, an aggregate row and the torque reference table.
func (b *WorkbookBuilder) addTorqueSheet(agg *ExportAggregate) error {
	sheet := b.wb.AddSheet()
	sheet.SetName("Torque")

	white := methods.RGB{R: 0xFF, G: 0xFF, B: 0xFF}
	black := methods.RGB{R: 0x00, G: 0x00, B: 0x00}
	headerStyle := b.style(&b.layout.Primary, white, true, 0, true, true)
	cellStyle := b.style(nil, black, false, 0, true, false)
	boldStyle := b.style(&b.layout.Secondary, black, true, 0, true, false)

	sheet.Column(1).SetWidth(14 * measurement.Character)
	for i := range ElementoTypes {
		sheet.Column(uint32(i + 2)).SetWidth(18 * measurement.Character)
	}
	totalCol := len(ElementoTypes) + 2
	pctCol := totalCol + 1
	sheet.Column(uint32(totalCol)).SetWidth(12 * measurement.Character)
	sheet.Column(uint32(pctCol)).SetWidth(16 * measurement.Character)

	b.setCell(sheet, 1, 1, "FRANJA", headerStyle)
	for i, el := range ElementoTypes {
		b.setCell(sheet, i+2, 1, el, headerStyle)
	}
	b.setCell(sheet, totalCol, 1, "TOTAL", headerStyle)
	b.setCell(sheet, pctCol, 1, "CUMPLIMIENTO", headerStyle)

	matrix := TorqueMatrix(agg.Meta.Torque)
	grandTotal, grandFail := 0, 0
	for i, franja := range Franjas {
		row := i + 2
		b.setCell(sheet, 1, row, franja, boldStyle)

		rowTotal, rowFail := 0, 0
		for j, el := range ElementoTypes {
			cell := matrix[franja][el]
			text := "-"
			if cell.CantidadTornillos > 0 {
				text = fmt.Sprintf("%d / %d", cell.CantidadTornillos, cell.NoPasan)
			}
			b.setCell(sheet, j+2, row, text, cellStyle)
			rowTotal += cell.CantidadTornillos
			rowFail += cell.NoPasan
		}

		b.setCell(sheet, totalCol, row, strconv.Itoa(rowTotal), cellStyle)
		b.writeCompliance(sheet, pctCol, row, rowTotal, rowFail, cellStyle)
		grandTotal += rowTotal
		grandFail += rowFail
	}

	totalRow := len(Franjas) + 2
	b.setCell(sheet, 1, totalRow, "TOTAL", headerStyle)
	for j := range ElementoTypes {
		b.setCell(sheet, j+2, totalRow, "", headerStyle)
	}
	b.setCell(sheet, totalCol, totalRow, strconv.Itoa(grandTotal), boldStyle)
	b.writeCompliance(sheet, pctCol, totalRow, grandTotal, grandFail, boldStyle)

	// Static reference table under the matrix.
	refRow := totalRow + 2
	b.setCell(sheet, 1, refRow, "DIÁMETRO PERNO", headerStyle)
	b.setCell(sheet, 2, refRow, "TORQUE REQUERIDO (N·m)", headerStyle)
	for i, ref := range TorqueReferences {
		b.setCell(sheet, 1, refRow+1+i, ref.Diametro, cellStyle)
		b.setCell(sheet, 2, refRow+1+i, strconv.FormatFloat(ref.NewtonM, 'f', 0, 64), cellStyle)
	}
	return nil
}

func (b *WorkbookBuilder) writeCompliance(sheet spreadsheet.Sheet, col, row, total, fail int, fallback spreadsheet.CellStyle) {
	if total <= 0 {
		b.setCell(sheet, col, row, "-", fallback)
		return
	}
	pct := CompliancePct(total, fail)
	fill, font := ComplianceColor(pct)
	b.setCell(sheet, col, row, FormatCompliance(pct), b.style(&fill, font, true, 0, true, false))
}

func strOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func floatOrEmpty(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
