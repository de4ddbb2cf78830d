package services

import (
	"encoding/base64"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/4rk4ng3l/TowerFormsBackEnd/models"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := models.OpenTestDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return db
}

func seedForm(t *testing.T, db *gorm.DB, siteID *string) models.Form {
	t.Helper()
	form := models.Form{
		ID:       "form-1",
		Name:     "Mantenimiento Torre",
		SiteID:   siteID,
		SiteType: models.SiteGreenfield,
		Steps: []models.FormStep{
			{
				ID:         "step-1",
				StepNumber: 1,
				Title:      "Estructura",
				Questions: []models.Question{
					{ID: "q-1", QuestionText: "Estado de pernos", Type: models.QuestionSingleChoice,
						Options: datatypes.JSON(`["Bueno","Malo"]`), IsRequired: true, OrderNumber: 1},
					{ID: "q-2", QuestionText: "Observación general", Type: models.QuestionText, OrderNumber: 2},
				},
			},
		},
	}
	require.NoError(t, db.Create(&form).Error)
	return form
}

func textPtr(s string) *string { return &s }

func basePayload(id string) SubmissionPayload {
	now := time.Now()
	return SubmissionPayload{
		ID:        id,
		FormID:    "form-1",
		StartedAt: &now,
		Answers: []AnswerPayload{
			{ID: id + "-a1", QuestionID: "q-1", AnswerValue: []string{"Bueno"}},
			{ID: id + "-a2", QuestionID: "q-2", AnswerText: textPtr("Sin novedades")},
		},
	}
}

func TestReconcileCreatesSubmission(t *testing.T) {
	db := newTestDB(t)
	seedForm(t, db, nil)
	r := NewReconciler(db, t.TempDir())

	result := r.Reconcile([]SubmissionPayload{basePayload("sub-1")})

	require.Empty(t, result.Errors)
	require.Equal(t, 1, result.SyncedSubmissions)

	var sub models.Submission
	require.NoError(t, db.First(&sub, "id = ?", "sub-1").Error)
	require.True(t, sub.IsSynced())
	require.NotNil(t, sub.SyncedAt)

	var answers []models.Answer
	require.NoError(t, db.Where("submission_id = ?", "sub-1").Find(&answers).Error)
	require.Len(t, answers, 2)
}

func TestReconcileIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	seedForm(t, db, nil)
	r := NewReconciler(db, t.TempDir())

	payload := basePayload("sub-1")
	require.Empty(t, r.Reconcile([]SubmissionPayload{payload}).Errors)

	// Same payload again, one answer changed on the device.
	payload.Answers[0].AnswerValue = []string{"Malo"}
	result := r.Reconcile([]SubmissionPayload{payload})
	require.Empty(t, result.Errors)

	var answers []models.Answer
	require.NoError(t, db.Where("submission_id = ?", "sub-1").Find(&answers).Error)
	require.Len(t, answers, 2, "re-sync must not duplicate answers")

	var changed models.Answer
	require.NoError(t, db.First(&changed, "id = ?", "sub-1-a1").Error)
	var selected []string
	require.NoError(t, json.Unmarshal(changed.ChoiceValue, &selected))
	require.Equal(t, []string{"Malo"}, selected)
}

func TestReconcileCompletionIsMonotonic(t *testing.T) {
	db := newTestDB(t)
	seedForm(t, db, nil)
	r := NewReconciler(db, t.TempDir())

	payload := basePayload("sub-1")
	completed := time.Now().Add(-time.Hour)
	payload.CompletedAt = &completed
	require.Empty(t, r.Reconcile([]SubmissionPayload{payload}).Errors)

	var first models.Submission
	require.NoError(t, db.First(&first, "id = ?", "sub-1").Error)
	require.True(t, first.IsCompleted())
	stamp := *first.CompletedAt

	// A later re-sync must not move the completion time.
	later := time.Now()
	payload.CompletedAt = &later
	require.Empty(t, r.Reconcile([]SubmissionPayload{payload}).Errors)

	var second models.Submission
	require.NoError(t, db.First(&second, "id = ?", "sub-1").Error)
	require.Equal(t, stamp.Unix(), second.CompletedAt.Unix())
}

func TestReconcileBatchIsolation(t *testing.T) {
	db := newTestDB(t)
	seedForm(t, db, nil)
	r := NewReconciler(db, t.TempDir())

	good1 := basePayload("sub-1")
	bad := basePayload("")
	good2 := basePayload("sub-3")

	result := r.Reconcile([]SubmissionPayload{good1, bad, good2})

	require.Equal(t, 2, result.SyncedSubmissions)
	require.Len(t, result.Errors, 1)
	require.Equal(t, "", result.Errors[0].SubmissionID)

	var count int64
	require.NoError(t, db.Model(&models.Submission{}).Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestReconcileFileMetadataThenBytes(t *testing.T) {
	db := newTestDB(t)
	seedForm(t, db, nil)
	uploads := t.TempDir()
	r := NewReconciler(db, uploads)

	payload := basePayload("sub-1")
	payload.Files = []FilePayload{{
		ID: "file-1", StepID: "step-1", QuestionID: textPtr("q-1"),
		FileName: "perno.jpg", MimeType: "image/jpeg",
	}}
	require.Empty(t, r.Reconcile([]SubmissionPayload{payload}).Errors)

	var pending models.File
	require.NoError(t, db.First(&pending, "id = ?", "file-1").Error)
	require.False(t, pending.HasBytes())
	require.Equal(t, models.SyncPending, pending.SyncStatus)

	// Device retries with inline content.
	payload.Files[0].FileData = base64.StdEncoding.EncodeToString([]byte("jpeg-bytes"))
	require.Empty(t, r.Reconcile([]SubmissionPayload{payload}).Errors)

	var synced models.File
	require.NoError(t, db.First(&synced, "id = ?", "file-1").Error)
	require.True(t, synced.HasBytes())
	require.Equal(t, models.SyncSynced, synced.SyncStatus)
	require.Equal(t, filepath.Join(uploads, "file-1-perno.jpg"), *synced.LocalPath)

	var count int64
	require.NoError(t, db.Model(&models.File{}).Count(&count).Error)
	require.EqualValues(t, 1, count, "bytes arriving later must reuse the metadata row")
}

func TestReconcileInventoryElements(t *testing.T) {
	db := newTestDB(t)
	site := models.Site{ID: "site-1", CodigoTowernex: "TWR-001", SiteType: models.SiteGreenfield}
	require.NoError(t, db.Create(&site).Error)
	seedForm(t, db, textPtr("site-1"))

	existing := models.InventoryEE{ID: "ee-1", SiteID: "site-1", IdEE: 3, TipoEE: "Antena RF"}
	require.NoError(t, db.Create(&existing).Error)

	r := NewReconciler(db, t.TempDir())
	payload := basePayload("sub-1")
	payload.Metadata = json.RawMessage(`{
		"newInventoryElements": {
			"ee": [
				{"id": "local_123", "tipoEE": "Antena MW", "alturaAntena": 24.5},
				{"id": "ee-1", "isEdited": true, "fabricante": "Huawei"},
				{"id": "ee-1", "tipoEE": "ignored, already synced"}
			],
			"ep": [
				{"isLocal": true, "tipoPiso": "Gabinete", "dimensiones": {"ancho": 0.8, "profundidad": 0.6, "altura": 1.9}}
			]
		}
	}`)

	require.Empty(t, r.Reconcile([]SubmissionPayload{payload}).Errors)

	var ees []models.InventoryEE
	require.NoError(t, db.Where("site_id = ?", "site-1").Order("id_ee").Find(&ees).Error)
	require.Len(t, ees, 2, "unchanged resubmission must not create a row")
	require.Equal(t, 3, ees[0].IdEE)
	require.Equal(t, 4, ees[1].IdEE, "new element continues the site sequence")
	require.Equal(t, "Antena MW", ees[1].TipoEE)
	require.Equal(t, "En servicio", ees[1].Situacion)

	require.NotNil(t, ees[0].Fabricante)
	require.Equal(t, "Huawei", *ees[0].Fabricante)
	require.Equal(t, "Antena RF", ees[0].TipoEE, "edit patches only the sent keys")

	var eps []models.InventoryEP
	require.NoError(t, db.Where("site_id = ?", "site-1").Find(&eps).Error)
	require.Len(t, eps, 1)
	require.Equal(t, 1, eps[0].IdEP, "first element of an empty sequence gets 1")
	require.NotNil(t, eps[0].Ancho)
	require.Equal(t, 0.8, *eps[0].Ancho)
	require.Equal(t, 1.9, *eps[0].Altura)
}

func TestReconcileInventorySkippedWithoutSite(t *testing.T) {
	db := newTestDB(t)
	seedForm(t, db, nil)
	r := NewReconciler(db, t.TempDir())

	payload := basePayload("sub-1")
	payload.Metadata = json.RawMessage(`{"newInventoryElements": {"ee": [{"tipoEE": "Antena"}]}}`)

	result := r.Reconcile([]SubmissionPayload{payload})
	require.Empty(t, result.Errors, "missing site binding must not fail the submission")

	var count int64
	require.NoError(t, db.Model(&models.InventoryEE{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestClassifyElement(t *testing.T) {
	require.Equal(t, elementNew, classifyElement(map[string]interface{}{}))
	require.Equal(t, elementNew, classifyElement(map[string]interface{}{"id": "local_9"}))
	require.Equal(t, elementNew, classifyElement(map[string]interface{}{"id": "ee-1", "isLocal": true}))
	require.Equal(t, elementEdited, classifyElement(map[string]interface{}{"id": "ee-1", "isEdited": true}))
	require.Equal(t, elementUnchanged, classifyElement(map[string]interface{}{"id": "ee-1"}))
}
