package models

import (
	"time"

	"gorm.io/datatypes"
)

// Sync lifecycle states shared by Submission and File.
const (
	SyncPending = "pending"
	SyncSyncing = "syncing"
	SyncSynced  = "synced"
	SyncFailed  = "failed"
)

type Submission struct {
	ID          string         `gorm:"type:varchar(64);primary_key" json:"id"`
	FormID      string         `gorm:"type:varchar(64);index" json:"formId"`
	UserID      *string        `gorm:"type:varchar(64)" json:"userId"`
	Metadata    datatypes.JSON `json:"metadata"`
	StartedAt   time.Time      `json:"startedAt"`
	CompletedAt *time.Time     `json:"completedAt"`
	SyncStatus  string         `gorm:"type:varchar(16);default:pending" json:"syncStatus"`
	SyncedAt    *time.Time     `json:"syncedAt"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`

	Answers []Answer `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
	Files   []File   `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE" json:"files,omitempty"`
}

// WithCompleted stamps the completion time. No-op if already completed.
func (s Submission) WithCompleted(at time.Time) Submission {
	if s.CompletedAt == nil {
		s.CompletedAt = &at
	}
	return s
}

// WithSynced marks the submission synced. Always the last transition of a
// reconciliation pass.
func (s Submission) WithSynced(at time.Time) Submission {
	s.SyncStatus = SyncSynced
	s.SyncedAt = &at
	return s
}

func (s Submission) IsCompleted() bool {
	return s.CompletedAt != nil
}

func (s Submission) IsSynced() bool {
	return s.SyncStatus == SyncSynced
}

type Answer struct {
	ID           string         `gorm:"type:varchar(64);primary_key" json:"id"`
	SubmissionID string         `gorm:"type:varchar(64);index" json:"submissionId"`
	QuestionID   string         `gorm:"type:varchar(64);index" json:"questionId"`
	TextValue    *string        `gorm:"type:text" json:"textValue"`
	ChoiceValue  datatypes.JSON `json:"choiceValue"`
	Comment      *string        `gorm:"type:text" json:"comment"`
	CreatedAt    time.Time      `json:"createdAt"`
}

func (a Answer) IsTextAnswer() bool {
	return a.TextValue != nil
}

func (a Answer) IsChoiceAnswer() bool {
	return len(a.ChoiceValue) > 0
}

type File struct {
	ID           string    `gorm:"type:varchar(64);primary_key" json:"id"`
	SubmissionID string    `gorm:"type:varchar(64);index" json:"submissionId"`
	StepID       string    `gorm:"type:varchar(64);index" json:"stepId"`
	QuestionID   *string   `gorm:"type:varchar(64)" json:"questionId"`
	LocalPath    *string   `gorm:"type:varchar(512)" json:"localPath"`
	RemotePath   *string   `gorm:"type:varchar(512)" json:"remotePath"`
	FileName     string    `gorm:"type:varchar(255)" json:"fileName"`
	FileSize     int64     `json:"fileSize"`
	MimeType     string    `gorm:"type:varchar(128)" json:"mimeType"`
	SyncStatus   string    `gorm:"type:varchar(16);default:pending" json:"syncStatus"`
	CreatedAt    time.Time `json:"createdAt"`
}

// WithLocalPath attaches the on-disk location once the binary arrives and
// marks the file synced.
func (f File) WithLocalPath(path string) File {
	f.LocalPath = &path
	f.SyncStatus = SyncSynced
	return f
}

func (f File) HasBytes() bool {
	return f.LocalPath != nil
}

func (f File) IsImage() bool {
	switch f.MimeType {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}
