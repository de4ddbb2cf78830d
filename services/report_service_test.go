package services

import (
	"encoding/json"
	"testing"
	"time"

	"gitee.com/gooffice/gooffice/spreadsheet"
	"github.com/4rk4ng3l/TowerFormsBackEnd/methods"
	"github.com/4rk4ng3l/TowerFormsBackEnd/models"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func reportAggregate(t *testing.T) *ExportAggregate {
	t.Helper()

	started := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	raw := json.RawMessage(`{
		"codigoSitio": "TWR-001",
		"regional": "Norte",
		"torque": [
			{"franja": "0-6 m", "elemento": "Pernos Estructura", "cantidadTornillos": 10, "noPasan": 1},
			{"franja": "6-12 m", "elemento": "Anclajes", "cantidadTornillos": 10, "noPasan": 1}
		]
	}`)
	meta, err := models.DecodeMetadata(raw)
	require.NoError(t, err)

	form := models.Form{
		ID: "form-1", Name: "Mantenimiento Torre", SiteType: models.SiteGreenfield, HasTorque: true,
		Steps: []models.FormStep{{
			ID: "step-1", StepNumber: 1, Title: "Estructura",
			Questions: []models.Question{
				{ID: "q-1", QuestionText: "Estado de pernos", Type: models.QuestionSingleChoice, OrderNumber: 1},
				{ID: "q-2", QuestionText: "Corrosión visible", Type: models.QuestionSingleChoice, OrderNumber: 2},
			},
		}},
	}

	user := models.TechUser{ID: "u-1", Email: "ana@ienercom.local", FirstName: "Ana", LastName: "Rojas"}
	comment := "Revisar en próxima visita"

	return &ExportAggregate{
		Submission: models.Submission{ID: "sub-1", FormID: "form-1", Metadata: datatypes.JSON(raw), StartedAt: started},
		Meta:       meta,
		Form:       form,
		User:       &user,
		Answers: []models.Answer{{
			ID: "a-1", SubmissionID: "sub-1", QuestionID: "q-1",
			ChoiceValue: datatypes.JSON(`["Bueno"]`), Comment: &comment,
		}},
	}
}

func openSheet(t *testing.T, path, name string) spreadsheet.Sheet {
	t.Helper()
	wb, err := spreadsheet.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { wb.Close() })
	for _, sheet := range wb.Sheets() {
		if sheet.Name() == name {
			return sheet
		}
	}
	t.Fatalf("sheet %q not found", name)
	return spreadsheet.Sheet{}
}

func TestRenderSubmissionExcelMainSheet(t *testing.T) {
	agg := reportAggregate(t)
	result, err := RenderSubmissionExcel(agg, t.TempDir())
	require.NoError(t, err)
	require.Contains(t, result.DisplayName, "Inspeccion_Mantenimiento_Torre")

	sheet := openSheet(t, result.Path, "Rutina Mantenimiento")

	require.Equal(t, "RUTINA MANTENIMIENTO PREVENTIVO - MANTENIMIENTO TORRE", sheet.Cell("A1").GetString())

	// GREENFIELD: 6 title rows, labels on 7, values on 8.
	require.Equal(t, "CÓDIGO DEL SITIO", sheet.Cell("A7").GetString())
	require.Equal(t, "TWR-001", sheet.Cell("A8").GetString())
	require.Equal(t, "N/A", sheet.Cell("B8").GetString(), "missing metadata renders N/A")
	require.Equal(t, "Norte", sheet.Cell("I8").GetString())

	// Derived fields on the second band.
	require.Equal(t, "IENERCOM", sheet.Cell("B10").GetString())
	require.Equal(t, "Ana Rojas", sheet.Cell("C10").GetString())
	require.Equal(t, "14/03/2026 09:30", sheet.Cell("E10").GetString(), "uncompleted submissions fall back to the start time")

	// Checklist rows start after the observations block.
	require.Equal(t, "Actividad", sheet.Cell("A24").GetString())
	require.Equal(t, "Estado de pernos", sheet.Cell("B25").GetString())
	require.Equal(t, methods.ClassOK, sheet.Cell("D25").GetString())
	require.Contains(t, sheet.Cell("F25").GetString(), "Revisar en próxima visita")
	require.Equal(t, methods.ClassNoAnswer, sheet.Cell("D26").GetString(), "unanswered questions still get a row")
}

func TestRenderSubmissionExcelTorqueSheet(t *testing.T) {
	agg := reportAggregate(t)
	result, err := RenderSubmissionExcel(agg, t.TempDir())
	require.NoError(t, err)

	sheet := openSheet(t, result.Path, "Torque")

	require.Equal(t, "FRANJA", sheet.Cell("A1").GetString())
	require.Equal(t, "0-6 m", sheet.Cell("A2").GetString())
	require.Equal(t, "10 / 1", sheet.Cell("B2").GetString())
	require.Equal(t, "10", sheet.Cell("G2").GetString())
	require.Equal(t, "90.0%", sheet.Cell("H2").GetString())

	// Unsampled bands still print.
	require.Equal(t, "54-60 m", sheet.Cell("A11").GetString())
	require.Equal(t, "-", sheet.Cell("H11").GetString())

	// Aggregate row.
	require.Equal(t, "TOTAL", sheet.Cell("A12").GetString())
	require.Equal(t, "20", sheet.Cell("G12").GetString())
	require.Equal(t, "90.0%", sheet.Cell("H12").GetString())

	// Reference table below the matrix.
	require.Equal(t, "DIÁMETRO PERNO", sheet.Cell("A14").GetString())
	require.Equal(t, `1/2"`, sheet.Cell("A15").GetString())
	require.Equal(t, "81", sheet.Cell("B15").GetString())
}

func TestRenderSubmissionExcelInventorySheets(t *testing.T) {
	agg := reportAggregate(t)
	agg.Form.HasInventory = true
	agg.Site = &models.Site{ID: "site-1", CodigoTowernex: "TWR-001", SiteType: models.SiteGreenfield}
	fabricante := "Huawei"
	agg.EE = []models.InventoryEE{{ID: "ee-1", SiteID: "site-1", IdEE: 1, TipoEE: "Antena RF", Situacion: "En servicio", Fabricante: &fabricante}}
	ancho := 0.8
	tipo := "Gabinete"
	agg.EP = []models.InventoryEP{{ID: "ep-1", SiteID: "site-1", IdEP: 1, TipoPiso: &tipo, Situacion: "En servicio", Ancho: &ancho}}

	result, err := RenderSubmissionExcel(agg, t.TempDir())
	require.NoError(t, err)

	ee := openSheet(t, result.Path, "Inventario EE")
	require.Equal(t, "ID EE", ee.Cell("A1").GetString())
	require.Equal(t, "1", ee.Cell("A2").GetString())
	require.Equal(t, "Antena RF", ee.Cell("B2").GetString())
	require.Equal(t, "Huawei", ee.Cell("G2").GetString())

	ep := openSheet(t, result.Path, "Inventario EP")
	require.Equal(t, "Gabinete", ep.Cell("B2").GetString())
	require.Equal(t, "0.8", ep.Cell("J2").GetString())
}

func TestMetaValuePrefersDeviceMetadata(t *testing.T) {
	agg := reportAggregate(t)
	agg.Meta.Extra["empresa"] = "ACME Contratistas"
	agg.Meta.Extra["coordinador"] = "Luis Paredes"

	require.Equal(t, "ACME Contratistas", metaValue(agg, "empresa"))
	require.Equal(t, "Luis Paredes", metaValue(agg, "coordinador"))
}

func TestMetaValueDerivesWhenAbsent(t *testing.T) {
	agg := reportAggregate(t)
	delete(agg.Meta.Extra, "empresa")
	delete(agg.Meta.Extra, "coordinador")

	require.Equal(t, "IENERCOM", metaValue(agg, "empresa"))
	require.Equal(t, "Ana Rojas", metaValue(agg, "coordinador"))

	agg.User = nil
	require.Equal(t, "N/A", metaValue(agg, "coordinador"))

	// Execution date is always stamped server-side, even if the device
	// sent one.
	agg.Meta.Extra["fechaEjecucion"] = "01/01/2000 00:00"
	require.Equal(t, "14/03/2026 09:30", metaValue(agg, "fechaEjecucion"))
}

func TestResolveSiteTypePrefersMetadata(t *testing.T) {
	agg := reportAggregate(t)
	agg.Site = &models.Site{ID: "site-1", SiteType: models.SiteGreenfield}
	agg.Meta.Extra["tipoSitio"] = "rooftop"

	require.Equal(t, models.SiteRooftop, resolveSiteType(agg))

	delete(agg.Meta.Extra, "tipoSitio")
	require.Equal(t, models.SiteGreenfield, resolveSiteType(agg))

	agg.Site = nil
	require.Equal(t, agg.Form.SiteType, resolveSiteType(agg))
}

func TestTorqueMatrix(t *testing.T) {
	samples := []models.TorqueSample{
		{Franja: "0-6 m", Elemento: "Anclajes", CantidadTornillos: 4, NoPasan: 1},
		{Franja: "0-6 m", Elemento: "Anclajes", CantidadTornillos: 6, NoPasan: 0},
		{Franja: "99-105 m", Elemento: "Anclajes", CantidadTornillos: 8, NoPasan: 8},
		{Franja: "0-6 m", Elemento: "Tuberías", CantidadTornillos: 3, NoPasan: 0},
	}

	matrix := TorqueMatrix(samples)

	cell := matrix["0-6 m"]["Anclajes"]
	require.Equal(t, 10, cell.CantidadTornillos)
	require.Equal(t, 1, cell.NoPasan)
	require.Len(t, matrix, len(Franjas), "unknown bands are dropped, known bands always present")
	require.Empty(t, matrix["0-6 m"]["Tuberías"], "unknown element types are dropped")
}

func TestComplianceGrading(t *testing.T) {
	require.Equal(t, "90.0%", FormatCompliance(CompliancePct(10, 1)))
	require.Equal(t, "100.0%", FormatCompliance(CompliancePct(8, 0)))

	green, _ := ComplianceColor(96)
	require.Equal(t, methods.RGB{R: 0xC6, G: 0xEF, B: 0xCE}, green)
	yellow, _ := ComplianceColor(90)
	require.Equal(t, methods.RGB{R: 0xFF, G: 0xEB, B: 0x9C}, yellow)
	red, _ := ComplianceColor(79.9)
	require.Equal(t, methods.RGB{R: 0xFF, G: 0xC7, B: 0xCE}, red)
}
