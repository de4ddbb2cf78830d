package models

import (
	"encoding/json"
	"sort"
	"time"

	"gorm.io/datatypes"
)

// Question types supported by the mobile forms.
const (
	QuestionText           = "text"
	QuestionSingleChoice   = "single_choice"
	QuestionMultipleChoice = "multiple_choice"
	QuestionNumber         = "number"
	QuestionDate           = "date"
	QuestionTime           = "time"
	QuestionFileUpload     = "file_upload"
)

type Form struct {
	ID             string         `gorm:"type:varchar(64);primary_key" json:"id"`
	Name           string         `gorm:"type:varchar(255)" json:"name"`
	Description    *string        `gorm:"type:text" json:"description"`
	Version        int            `gorm:"default:1" json:"version"`
	SiteID         *string        `gorm:"type:varchar(64);index" json:"siteId"`
	SiteType       string         `gorm:"type:varchar(32)" json:"siteType"`
	HasSecurity    bool           `json:"hasSecurity"`
	HasInventory   bool           `json:"hasInventory"`
	HasTorque      bool           `json:"hasTorque"`
	MetadataSchema datatypes.JSON `json:"metadataSchema"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`

	Steps []FormStep `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" json:"steps,omitempty"`
}

// OrderedSteps returns the steps sorted by StepNumber, each with its
// questions sorted by OrderNumber.
func (f Form) OrderedSteps() []FormStep {
	steps := make([]FormStep, len(f.Steps))
	copy(steps, f.Steps)
	sort.Slice(steps, func(i, j int) bool { return steps[i].StepNumber < steps[j].StepNumber })
	for i := range steps {
		sort.Slice(steps[i].Questions, func(a, b int) bool {
			return steps[i].Questions[a].OrderNumber < steps[i].Questions[b].OrderNumber
		})
	}
	return steps
}

// StepByNumber resolves a step by its declared order number, not array index.
func (f Form) StepByNumber(n int) (FormStep, bool) {
	for _, s := range f.Steps {
		if s.StepNumber == n {
			return s, true
		}
	}
	return FormStep{}, false
}

func (f Form) AllQuestions() []Question {
	var qs []Question
	for _, s := range f.OrderedSteps() {
		qs = append(qs, s.Questions...)
	}
	return qs
}

func (f Form) RequiredQuestions() []Question {
	var qs []Question
	for _, q := range f.AllQuestions() {
		if q.IsRequired {
			qs = append(qs, q)
		}
	}
	return qs
}

type FormStep struct {
	ID         string    `gorm:"type:varchar(64);primary_key" json:"id"`
	FormID     string    `gorm:"type:varchar(64);index" json:"formId"`
	StepNumber int       `json:"stepNumber"`
	Title      string    `gorm:"type:varchar(255)" json:"title"`
	FilePrefix *string   `gorm:"type:varchar(64)" json:"filePrefix"`
	CreatedAt  time.Time `json:"createdAt"`

	Questions []Question `gorm:"foreignKey:StepID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

type Question struct {
	ID           string         `gorm:"type:varchar(64);primary_key" json:"id"`
	StepID       string         `gorm:"type:varchar(64);index" json:"stepId"`
	QuestionText string         `gorm:"type:text" json:"questionText"`
	Description  *string        `gorm:"type:text" json:"description"`
	Type         string         `gorm:"type:varchar(32)" json:"type"`
	Options      datatypes.JSON `json:"options"`
	IsRequired   bool           `json:"isRequired"`
	OrderNumber  int            `json:"orderNumber"`
	Meta         datatypes.JSON `json:"meta"`
	CreatedAt    time.Time      `json:"createdAt"`
}

func (q Question) IsChoice() bool {
	return q.Type == QuestionSingleChoice || q.Type == QuestionMultipleChoice
}

// OptionList decodes the declared choice options. Nil for non-choice questions.
func (q Question) OptionList() []string {
	if len(q.Options) == 0 {
		return nil
	}
	var opts []string
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil
	}
	return opts
}

// MetaString reads a string field from the question's free-form metadata,
// e.g. "definicion" or "periodicidad".
func (q Question) MetaString(key string) string {
	if len(q.Meta) == 0 {
		return ""
	}
	var m map[string]interface{}
	if err := json.Unmarshal(q.Meta, &m); err != nil {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
