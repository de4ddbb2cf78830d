package views

import (
	"net/http"

	"github.com/4rk4ng3l/TowerFormsBackEnd/models"
	"github.com/gin-gonic/gin"
)

// SyncSubmissions ingests a device's offline batch. Always responds 200:
// per-item failures ride in the result's error list so the device can retry
// just the failed submissions.
func (uc *UserController) SyncSubmissions(c *gin.Context) {
	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := uc.Reconciler.Reconcile(req.Submissions)
	c.JSON(http.StatusOK, result)
}

// GetPendingSync lists submissions still waiting for a full reconciliation,
// mostly files whose bytes never arrived.
func (uc *UserController) GetPendingSync(c *gin.Context) {
	DB := models.DB

	var subs []models.Submission
	if err := DB.Where("sync_status <> ?", models.SyncSynced).Find(&subs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := PendingSyncResponse{Submissions: []PendingSubmission{}}
	for _, s := range subs {
		resp.Submissions = append(resp.Submissions, PendingSubmission{
			ID:         s.ID,
			FormID:     s.FormID,
			SyncStatus: s.SyncStatus,
			StartedAt:  s.StartedAt.Format("2006-01-02 15:04:05"),
		})
	}
	resp.Count = len(resp.Submissions)
	c.JSON(http.StatusOK, resp)
}

// ValidateSubmission reports completeness and consistency issues without
// blocking anything; the app shows these before the user closes a visit.
func (uc *UserController) ValidateSubmission(c *gin.Context) {
	submissionID := c.Param("submissionId")
	respondValidation(c, submissionID)
}
