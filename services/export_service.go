package services

import (
	"errors"
	"log"

	"github.com/4rk4ng3l/TowerFormsBackEnd/methods"
	"github.com/4rk4ng3l/TowerFormsBackEnd/models"
	"gorm.io/gorm"
)

// ExportAggregate is everything a report or zip render needs, loaded once.
// Site and inventory are optional: a submission against a form with no
// resolvable site still exports, the optional sheets are just skipped.
type ExportAggregate struct {
	Submission models.Submission
	Meta       models.SubmissionMetadata
	Form       models.Form
	User       *models.TechUser
	Answers    []models.Answer
	Files      []models.File
	Site       *models.Site
	EE         []models.InventoryEE
	EP         []models.InventoryEP
}

// LoadExportAggregate fetches a submission with its full export context.
func LoadExportAggregate(db *gorm.DB, submissionID string) (*ExportAggregate, error) {
	var sub models.Submission
	if err := db.First(&sub, "id = ?", submissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, methods.NotFoundf("submission %s not found", submissionID)
		}
		return nil, err
	}

	meta, err := models.DecodeMetadata(sub.Metadata)
	if err != nil {
		log.Printf("Submission %s has unreadable metadata: %v", submissionID, err)
		meta = models.SubmissionMetadata{Extra: map[string]interface{}{}}
	}

	var form models.Form
	if err := db.Preload("Steps.Questions").First(&form, "id = ?", sub.FormID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, methods.NotFoundf("form %s not found", sub.FormID)
		}
		return nil, err
	}

	agg := &ExportAggregate{Submission: sub, Meta: meta, Form: form}

	if sub.UserID != nil {
		var user models.TechUser
		if err := db.First(&user, "id = ?", *sub.UserID).Error; err == nil {
			agg.User = &user
		}
	}

	if err := db.Where("submission_id = ?", sub.ID).Find(&agg.Answers).Error; err != nil {
		return nil, err
	}
	if err := db.Where("submission_id = ?", sub.ID).Find(&agg.Files).Error; err != nil {
		return nil, err
	}

	agg.loadSite(db)
	return agg, nil
}

// loadSite resolves the site through the form's binding first, then through
// the metadata site-code aliases. Missing sites are not an export error.
func (a *ExportAggregate) loadSite(db *gorm.DB) {
	var site models.Site
	found := false

	if a.Form.SiteID != nil {
		if err := db.First(&site, "id = ?", *a.Form.SiteID).Error; err == nil {
			found = true
		}
	}
	if !found {
		if code, ok := a.Meta.Lookup("codigoSitio"); ok {
			err := db.First(&site, "codigo_towernex = ? OR codigo_sitio = ?", code, code).Error
			found = err == nil
		}
	}
	if !found {
		return
	}

	a.Site = &site
	if err := db.Where("site_id = ?", site.ID).Order("id_ee").Find(&a.EE).Error; err != nil {
		log.Printf("Cannot load EE inventory for site %s: %v", site.ID, err)
	}
	if err := db.Where("site_id = ?", site.ID).Order("id_ep").Find(&a.EP).Error; err != nil {
		log.Printf("Cannot load EP inventory for site %s: %v", site.ID, err)
	}
}

// AnswerByQuestion indexes answers by question id for the checklist render.
func (a *ExportAggregate) AnswerByQuestion() map[string]models.Answer {
	byQ := make(map[string]models.Answer, len(a.Answers))
	for _, ans := range a.Answers {
		byQ[ans.QuestionID] = ans
	}
	return byQ
}

// FileCountByQuestion counts attachments per question for the observation
// column suffix.
func (a *ExportAggregate) FileCountByQuestion() map[string]int {
	counts := map[string]int{}
	for _, f := range a.Files {
		if f.QuestionID != nil {
			counts[*f.QuestionID]++
		}
	}
	return counts
}
