package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/4rk4ng3l/TowerFormsBackEnd/methods"
	"github.com/4rk4ng3l/TowerFormsBackEnd/models"
)

// ValidationIssue is one human-readable problem found in a submission.
type ValidationIssue struct {
	QuestionID string `json:"questionId"`
	Message    string `json:"message"`
}

// ValidateSubmission checks a submission's answers against the form's
// declared questions. Sync deliberately never calls this: devices may push
// partial work; only the export path insists on a coherent submission.
func ValidateSubmission(form models.Form, answers []models.Answer) []ValidationIssue {
	var issues []ValidationIssue

	questions := map[string]models.Question{}
	for _, q := range form.AllQuestions() {
		questions[q.ID] = q
	}

	for _, ans := range answers {
		q, ok := questions[ans.QuestionID]
		if !ok {
			issues = append(issues, ValidationIssue{
				QuestionID: ans.QuestionID,
				Message:    "answer references a question that is not part of the form",
			})
			continue
		}
		issues = append(issues, validateAnswer(q, ans)...)
	}

	return issues
}

func validateAnswer(q models.Question, ans models.Answer) []ValidationIssue {
	var issues []ValidationIssue

	if q.IsChoice() {
		if !ans.IsChoiceAnswer() {
			issues = append(issues, ValidationIssue{
				QuestionID: q.ID,
				Message:    "choice question answered without a selection",
			})
			return issues
		}
		var selected []string
		if err := json.Unmarshal(ans.ChoiceValue, &selected); err != nil {
			issues = append(issues, ValidationIssue{QuestionID: q.ID, Message: "selection is not a string array"})
			return issues
		}
		options := q.OptionList()
		for _, s := range selected {
			if !methods.IsStringInSlice(s, options) {
				issues = append(issues, ValidationIssue{
					QuestionID: q.ID,
					Message:    fmt.Sprintf("selected option %q is not among the declared options", s),
				})
			}
		}
		if q.Type == models.QuestionSingleChoice && len(selected) > 1 {
			issues = append(issues, ValidationIssue{QuestionID: q.ID, Message: "single choice question has multiple selections"})
		}
		return issues
	}

	if ans.IsTextAnswer() && strings.TrimSpace(*ans.TextValue) == "" {
		issues = append(issues, ValidationIssue{QuestionID: q.ID, Message: "text answer is empty"})
	}
	return issues
}

// ValidateCompleteness verifies every required question has an answer.
func ValidateCompleteness(form models.Form, answers []models.Answer) []ValidationIssue {
	answered := map[string]bool{}
	for _, ans := range answers {
		answered[ans.QuestionID] = true
	}

	var issues []ValidationIssue
	for _, q := range form.RequiredQuestions() {
		if !answered[q.ID] {
			issues = append(issues, ValidationIssue{
				QuestionID: q.ID,
				Message:    fmt.Sprintf("required question %q has no answer", q.QuestionText),
			})
		}
	}
	return issues
}

// ValidateForExport wraps both checks into the error taxonomy.
func ValidateForExport(form models.Form, answers []models.Answer) error {
	issues := ValidateSubmission(form, answers)
	issues = append(issues, ValidateCompleteness(form, answers)...)
	if len(issues) == 0 {
		return nil
	}
	parts := make([]string, 0, len(issues))
	for _, i := range issues {
		parts = append(parts, i.Message)
	}
	return methods.Validationf("submission is not exportable: %s", strings.Join(parts, "; "))
}
