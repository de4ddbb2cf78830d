package views

import (
	"github.com/4rk4ng3l/TowerFormsBackEnd/services"
)

// UserController groups the HTTP handlers. The reconciler is shared so its
// per-site locks serialize concurrent sync requests.
type UserController struct {
	Reconciler *services.Reconciler
}

// SyncRequest is the batch envelope devices POST after regaining
// connectivity.
type SyncRequest struct {
	Submissions []services.SubmissionPayload `json:"submissions"`
}

type PendingSubmission struct {
	ID         string `json:"id"`
	FormID     string `json:"formId"`
	SyncStatus string `json:"syncStatus"`
	StartedAt  string `json:"startedAt"`
}

type PendingSyncResponse struct {
	Submissions []PendingSubmission `json:"submissions"`
	Count       int                 `json:"count"`
}

type UploadResponse struct {
	FileID   string `json:"fileId"`
	FileName string `json:"fileName"`
	Synced   bool   `json:"synced"`
}

// ExportResponse points the client at the rendered artifact.
type ExportResponse struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
}

type StepImagesResponse struct {
	StepNumber int    `json:"stepNumber"`
	URL        string `json:"url"`
	FileName   string `json:"fileName"`
}
