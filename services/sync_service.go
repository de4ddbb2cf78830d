package services

import (
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/4rk4ng3l/TowerFormsBackEnd/models"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubmissionPayload is one device-originated submission bundle: the
// submission itself plus its answers and file metadata.
type SubmissionPayload struct {
	ID          string          `json:"id"`
	FormID      string          `json:"formId"`
	UserID      *string         `json:"userId"`
	Metadata    json.RawMessage `json:"metadata"`
	StartedAt   *time.Time      `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt"`
	Answers     []AnswerPayload `json:"answers"`
	Files       []FilePayload   `json:"files"`
}

type AnswerPayload struct {
	ID            string   `json:"id"`
	QuestionID    string   `json:"questionId"`
	AnswerText    *string  `json:"answerText"`
	AnswerValue   []string `json:"answerValue"`
	AnswerComment *string  `json:"answerComment"`
}

type FilePayload struct {
	ID         string  `json:"id"`
	StepID     string  `json:"stepId"`
	QuestionID *string `json:"questionId"`
	FileName   string  `json:"fileName"`
	FileData   string  `json:"fileData"` // base64, legacy inline path
	MimeType   string  `json:"mimeType"`
	FileSize   int64   `json:"fileSize"`
}

type SyncError struct {
	SubmissionID string `json:"submissionId"`
	Error        string `json:"error"`
}

type SyncResult struct {
	SyncedSubmissions int         `json:"syncedSubmissions"`
	SyncedFiles       int         `json:"syncedFiles"`
	Errors            []SyncError `json:"errors"`
}

// Reconciler merges client-submitted submissions, answers, file metadata and
// ad-hoc inventory elements against server state. Every step is idempotent
// so devices can re-send a payload after a partial failure.
type Reconciler struct {
	db        *gorm.DB
	uploadDir string
}

func NewReconciler(db *gorm.DB, uploadDir string) *Reconciler {
	return &Reconciler{db: db, uploadDir: uploadDir}
}

// Reconcile processes a batch with per-item isolation: one payload's failure
// is recorded and the loop continues. Callers always get a 200-shaped result.
func (r *Reconciler) Reconcile(batch []SubmissionPayload) SyncResult {
	result := SyncResult{Errors: []SyncError{}}

	log.Printf("Starting sync process, %d submission(s)", len(batch))

	for i := range batch {
		payload := batch[i]
		if err := r.syncOne(payload); err != nil {
			log.Printf("Error syncing submission %s: %v", payload.ID, err)
			result.Errors = append(result.Errors, SyncError{
				SubmissionID: payload.ID,
				Error:        err.Error(),
			})
			continue
		}
		result.SyncedSubmissions++
		result.SyncedFiles += len(payload.Files)
	}

	log.Printf("Sync process completed: %d synced, %d failed", result.SyncedSubmissions, len(result.Errors))
	return result
}

func (r *Reconciler) syncOne(p SubmissionPayload) (err error) {
	// A malformed payload must never take the rest of the batch down.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic during sync: %v", rec)
		}
	}()

	if p.ID == "" {
		return errors.New("submission id is required")
	}

	if err := r.db.Transaction(func(tx *gorm.DB) error {
		return r.upsertSubmission(tx, p)
	}); err != nil {
		return err
	}

	if err := r.syncFiles(p); err != nil {
		return err
	}

	// Inventory failures are per-element and never fail the submission.
	r.syncInventoryElements(p)
	return nil
}

// upsertSubmission creates or merges the submission row and its answers.
// Marking synced always happens last.
func (r *Reconciler) upsertSubmission(tx *gorm.DB, p SubmissionPayload) error {
	now := time.Now()

	var sub models.Submission
	err := tx.First(&sub, "id = ?", p.ID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		log.Printf("Creating new submission from sync: %s", p.ID)
		startedAt := now
		if p.StartedAt != nil {
			startedAt = *p.StartedAt
		}
		sub = models.Submission{
			ID:         p.ID,
			FormID:     p.FormID,
			UserID:     p.UserID,
			Metadata:   datatypes.JSON(p.Metadata),
			StartedAt:  startedAt,
			SyncStatus: models.SyncPending,
		}
		if p.CompletedAt != nil {
			sub = sub.WithCompleted(now)
		}
		sub = sub.WithSynced(now)
		if err := tx.Create(&sub).Error; err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		log.Printf("Updating existing submission: %s", p.ID)
		if len(p.Metadata) > 0 {
			// Full replace, never a deep merge.
			sub.Metadata = datatypes.JSON(p.Metadata)
		}
		if p.CompletedAt != nil && !sub.IsCompleted() {
			sub = sub.WithCompleted(now)
		}
		sub = sub.WithSynced(now)
		if err := tx.Save(&sub).Error; err != nil {
			return err
		}
	}

	for _, ap := range p.Answers {
		answer, err := buildAnswer(p.ID, ap)
		if err != nil {
			return err
		}
		// Same answer id on re-sync is a content overwrite, not a duplicate.
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&answer).Error; err != nil {
			return err
		}
	}

	return nil
}

func buildAnswer(submissionID string, ap AnswerPayload) (models.Answer, error) {
	answer := models.Answer{
		ID:           ap.ID,
		SubmissionID: submissionID,
		QuestionID:   ap.QuestionID,
		Comment:      ap.AnswerComment,
	}
	if answer.ID == "" {
		answer.ID = uuid.New().String()
	}

	switch {
	case ap.AnswerText != nil && *ap.AnswerText != "":
		answer.TextValue = ap.AnswerText
	case len(ap.AnswerValue) > 0:
		raw, err := json.Marshal(ap.AnswerValue)
		if err != nil {
			return answer, err
		}
		answer.ChoiceValue = datatypes.JSON(raw)
	default:
		return answer, errors.New("answer must have either answerText or answerValue")
	}
	return answer, nil
}

// syncFiles reconciles file metadata and, when inline bytes are present,
// writes them to disk. Metadata sync and content upload are decoupled: a row
// may sit in a pending, path-less state until the multipart upload lands.
func (r *Reconciler) syncFiles(p SubmissionPayload) error {
	if len(p.Files) == 0 {
		return nil
	}
	if err := os.MkdirAll(r.uploadDir, os.ModePerm); err != nil {
		return err
	}

	for _, fp := range p.Files {
		var existing models.File
		err := r.db.First(&existing, "id = ?", fp.ID).Error
		found := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if found {
			if existing.HasBytes() || fp.FileData == "" {
				log.Printf("File already synced, skipping: %s", fp.ID)
				continue
			}
			// Pending metadata row and the payload now carries the bytes.
			path, mime, err := r.writeFileBytes(fp)
			if err != nil {
				return err
			}
			if existing.MimeType == "" {
				existing.MimeType = mime
			}
			existing = existing.WithLocalPath(path)
			if err := r.db.Save(&existing).Error; err != nil {
				return err
			}
			continue
		}

		file := models.File{
			ID:           fp.ID,
			SubmissionID: p.ID,
			StepID:       fp.StepID,
			QuestionID:   fp.QuestionID,
			FileName:     fp.FileName,
			FileSize:     fp.FileSize,
			MimeType:     fp.MimeType,
			SyncStatus:   models.SyncPending,
		}
		if file.ID == "" {
			file.ID = uuid.New().String()
		}

		if fp.FileData == "" {
			// Await the out-of-band multipart upload.
			log.Printf("File metadata saved, awaiting upload: %s", file.ID)
			if err := r.db.Create(&file).Error; err != nil {
				return err
			}
			continue
		}

		path, mime, err := r.writeFileBytes(fp)
		if err != nil {
			return err
		}
		if file.MimeType == "" {
			file.MimeType = mime
		}
		file = file.WithLocalPath(path)
		if err := r.db.Create(&file).Error; err != nil {
			return err
		}
		log.Printf("File synced successfully: %s (%s)", file.ID, file.FileName)
	}
	return nil
}

// writeFileBytes stores inline payload bytes and reports the detected mime
// type for rows the device sent without one.
func (r *Reconciler) writeFileBytes(fp FilePayload) (path, mime string, err error) {
	data, err := base64.StdEncoding.DecodeString(fp.FileData)
	if err != nil {
		return "", "", fmt.Errorf("decoding file %s: %v", fp.ID, err)
	}
	path = filepath.Join(r.uploadDir, fp.ID+"-"+fp.FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", "", err
	}
	return path, mimetype.Detect(data).String(), nil
}

// Per-site serialization for the inventory next-id computation. The sequence
// is a read-then-write; two concurrent submissions for the same site would
// otherwise race to the same idEE/idEP.
var siteLocks sync.Map

func siteLock(siteID string) *sync.Mutex {
	lock, _ := siteLocks.LoadOrStore(siteID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

type elementClass int

const (
	elementUnchanged elementClass = iota
	elementNew
	elementEdited
)

// classifyElement applies the 3-way rule: "new" means no id, a client-local
// sentinel id, or an explicit isLocal flag; "edited" needs isEdited and a
// real id; anything else is an already-synced element resubmitted as-is.
func classifyElement(m map[string]interface{}) elementClass {
	id, _ := m["id"].(string)
	isLocal, _ := m["isLocal"].(bool)
	isEdited, _ := m["isEdited"].(bool)

	if id == "" || strings.HasPrefix(id, "local_") || isLocal {
		return elementNew
	}
	if isEdited {
		return elementEdited
	}
	return elementUnchanged
}

// syncInventoryElements reconciles field-discovered inventory additions and
// edits carried in metadata.newInventoryElements.
func (r *Reconciler) syncInventoryElements(p SubmissionPayload) {
	meta, err := models.DecodeMetadata(p.Metadata)
	if err != nil {
		log.Printf("Cannot decode metadata for submission %s: %v", p.ID, err)
		return
	}
	if meta.NewInventoryElements == nil {
		return
	}

	var form models.Form
	if err := r.db.First(&form, "id = ?", p.FormID).Error; err != nil || form.SiteID == nil {
		log.Printf("Cannot sync inventory elements: form or siteId not found (formId=%s, submissionId=%s)", p.FormID, p.ID)
		return
	}
	siteID := *form.SiteID

	lock := siteLock(siteID)
	lock.Lock()
	defer lock.Unlock()

	log.Printf("Syncing inventory elements for site %s: %d EE, %d EP",
		siteID, len(meta.NewInventoryElements.EE), len(meta.NewInventoryElements.EP))

	for _, item := range meta.NewInventoryElements.EE {
		if err := r.syncEEElement(siteID, item); err != nil {
			log.Printf("Error syncing inventory EE element: %v", err)
		}
	}
	for _, item := range meta.NewInventoryElements.EP {
		if err := r.syncEPElement(siteID, item); err != nil {
			log.Printf("Error syncing inventory EP element: %v", err)
		}
	}
}

func (r *Reconciler) syncEEElement(siteID string, item map[string]interface{}) error {
	switch classifyElement(item) {
	case elementEdited:
		id, _ := item["id"].(string)
		patch := patchFromPayload(item, eeColumns)
		if len(patch) == 0 {
			return nil
		}
		return r.db.Model(&models.InventoryEE{}).Where("id = ?", id).Updates(patch).Error

	case elementNew:
		next, err := r.nextSequence(&models.InventoryEE{}, "id_ee", siteID)
		if err != nil {
			return err
		}
		if v, ok := numberField(item, "idEE"); ok && int(v) > 0 {
			next = int(v)
		}
		ee := models.InventoryEE{
			ID:                   uuid.New().String(),
			SiteID:               siteID,
			IdEE:                 next,
			TipoSoporte:          strField(item, "tipoSoporte"),
			TipoEE:               strFieldOr(item, "tipoEE", ""),
			Situacion:            strFieldOr(item, "situacion", "En servicio"),
			SituacionRRU:         strField(item, "situacionRRU"),
			Modelo:               strField(item, "modelo"),
			Fabricante:           strField(item, "fabricante"),
			TipoExposicionViento: strField(item, "tipoExposicionViento"),
			AristaCaraMastil:     strField(item, "aristaCaraMastil"),
			OperadorPropietario:  strField(item, "operadorPropietario"),
			AlturaAntena:         floatField(item, "alturaAntena"),
			Diametro:             floatField(item, "diametro"),
			Largo:                floatField(item, "largo"),
			Ancho:                floatField(item, "ancho"),
			Fondo:                floatField(item, "fondo"),
			Azimut:               floatField(item, "azimut"),
			EpaM2:                floatField(item, "epaM2"),
			UsoCompartido:        boolField(item, "usoCompartido"),
			SistemaMovil:         strField(item, "sistemaMovil"),
			Observaciones:        strField(item, "observaciones"),
		}
		if err := r.db.Create(&ee).Error; err != nil {
			return err
		}
		log.Printf("Inventory EE element created: site=%s idEE=%d tipoEE=%s", siteID, ee.IdEE, ee.TipoEE)
		return nil
	}
	return nil
}

func (r *Reconciler) syncEPElement(siteID string, item map[string]interface{}) error {
	// Dimensions arrive nested or flat depending on app version.
	ancho, profundidad, altura := epDimensions(item)

	switch classifyElement(item) {
	case elementEdited:
		id, _ := item["id"].(string)
		patch := patchFromPayload(item, epColumns)
		if _, ok := item["dimensiones"]; ok {
			patch["ancho"] = ancho
			patch["profundidad"] = profundidad
			patch["altura"] = altura
		}
		if len(patch) == 0 {
			return nil
		}
		return r.db.Model(&models.InventoryEP{}).Where("id = ?", id).Updates(patch).Error

	case elementNew:
		next, err := r.nextSequence(&models.InventoryEP{}, "id_ep", siteID)
		if err != nil {
			return err
		}
		if v, ok := numberField(item, "idEP"); ok && int(v) > 0 {
			next = int(v)
		}
		ep := models.InventoryEP{
			ID:                  uuid.New().String(),
			SiteID:              siteID,
			IdEP:                next,
			TipoPiso:            strField(item, "tipoPiso"),
			UbicacionEquipo:     strField(item, "ubicacionEquipo"),
			Situacion:           strFieldOr(item, "situacion", "En servicio"),
			EstadoPiso:          strField(item, "estadoPiso"),
			Modelo:              strField(item, "modelo"),
			Fabricante:          strField(item, "fabricante"),
			UsoEP:               strField(item, "usoEP"),
			OperadorPropietario: strField(item, "operadorPropietario"),
			Ancho:               ancho,
			Profundidad:         profundidad,
			Altura:              altura,
			SuperficieOcupada:   floatField(item, "superficieOcupada"),
			Observaciones:       strField(item, "observaciones"),
		}
		if err := r.db.Create(&ep).Error; err != nil {
			return err
		}
		log.Printf("Inventory EP element created: site=%s idEP=%d tipoPiso=%v", siteID, ep.IdEP, ep.TipoPiso)
		return nil
	}
	return nil
}

// nextSequence computes max(existing)+1 for a site-scoped inventory
// sequence, 1 when the site has none. Runs under the per-site lock.
func (r *Reconciler) nextSequence(model interface{}, column, siteID string) (int, error) {
	var max sql.NullInt64
	err := r.db.Model(model).Where("site_id = ?", siteID).
		Select("MAX(" + column + ")").Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if !max.Valid {
		return 1, nil
	}
	return int(max.Int64) + 1, nil
}

// Payload key → column mappings for patch updates. Only keys present in the
// payload are written; present-but-null overwrites to NULL.
var eeColumns = map[string]string{
	"tipoSoporte":          "tipo_soporte",
	"tipoEE":               "tipo_ee",
	"situacion":            "situacion",
	"situacionRRU":         "situacion_rru",
	"modelo":               "modelo",
	"fabricante":           "fabricante",
	"tipoExposicionViento": "tipo_exposicion_viento",
	"aristaCaraMastil":     "arista_cara_mastil",
	"operadorPropietario":  "operador_propietario",
	"alturaAntena":         "altura_antena",
	"diametro":             "diametro",
	"largo":                "largo",
	"ancho":                "ancho",
	"fondo":                "fondo",
	"azimut":               "azimut",
	"epaM2":                "epa_m2",
	"usoCompartido":        "uso_compartido",
	"sistemaMovil":         "sistema_movil",
	"observaciones":        "observaciones",
}

var epColumns = map[string]string{
	"tipoPiso":            "tipo_piso",
	"ubicacionEquipo":     "ubicacion_equipo",
	"situacion":           "situacion",
	"estadoPiso":          "estado_piso",
	"modelo":              "modelo",
	"fabricante":          "fabricante",
	"usoEP":               "uso_ep",
	"operadorPropietario": "operador_propietario",
	"ancho":               "ancho",
	"profundidad":         "profundidad",
	"altura":              "altura",
	"superficieOcupada":   "superficie_ocupada",
	"observaciones":       "observaciones",
}

func patchFromPayload(item map[string]interface{}, columns map[string]string) map[string]interface{} {
	patch := map[string]interface{}{}
	for key, column := range columns {
		if v, present := item[key]; present {
			patch[column] = v
		}
	}
	return patch
}

func epDimensions(item map[string]interface{}) (ancho, profundidad, altura *float64) {
	if dims, ok := item["dimensiones"].(map[string]interface{}); ok {
		return floatField(dims, "ancho"), floatField(dims, "profundidad"), floatField(dims, "altura")
	}
	return floatField(item, "ancho"), floatField(item, "profundidad"), floatField(item, "altura")
}

func strField(m map[string]interface{}, key string) *string {
	if v, ok := m[key].(string); ok && v != "" {
		return &v
	}
	return nil
}

func strFieldOr(m map[string]interface{}, key, fallback string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func floatField(m map[string]interface{}, key string) *float64 {
	if v, ok := m[key].(float64); ok {
		return &v
	}
	return nil
}

func numberField(m map[string]interface{}, key string) (float64, bool) {
	v, ok := m[key].(float64)
	return v, ok
}

func boolField(m map[string]interface{}, key string) bool {
	v, _ := m[key].(bool)
	return v
}
