package views

import (
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/4rk4ng3l/TowerFormsBackEnd/config"
	"github.com/4rk4ng3l/TowerFormsBackEnd/methods"
	"github.com/4rk4ng3l/TowerFormsBackEnd/models"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UploadFile attaches binary content to a file row that sync created as
// metadata-only. The multipart field is "file", the row id rides in the
// "fileId" form value.
func (uc *UserController) UploadFile(c *gin.Context) {
	DB := models.DB

	fileID := c.PostForm("fileId")
	if fileID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fileId is required"})
		return
	}

	var file models.File
	if err := DB.First(&file, "id = ?", fileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "file metadata not found, sync the submission first"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if file.HasBytes() {
		c.JSON(http.StatusOK, UploadResponse{FileID: file.ID, FileName: file.FileName, Synced: true})
		return
	}

	upload, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return
	}

	if err := os.MkdirAll(config.Upload, os.ModePerm); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	path := filepath.Join(config.Upload, file.ID+"-"+file.FileName)
	if err := c.SaveUploadedFile(upload, path); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if file.MimeType == "" {
		if mt, err := detectMime(path); err == nil {
			file.MimeType = mt
		}
	}
	if file.FileSize == 0 {
		file.FileSize = upload.Size
	}

	file = file.WithLocalPath(path)
	if err := DB.Save(&file).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Printf("File bytes attached: %s (%s, %d bytes)", file.ID, file.FileName, file.FileSize)
	c.JSON(http.StatusOK, UploadResponse{FileID: file.ID, FileName: file.FileName, Synced: true})
}

// UploadStepArchive ingests a whole step's evidence as one zip or rar.
// Each extracted image becomes a synced file row on the submission.
func (uc *UserController) UploadStepArchive(c *gin.Context) {
	DB := models.DB

	submissionID := c.PostForm("submissionId")
	stepID := c.PostForm("stepId")
	if submissionID == "" || stepID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "submissionId and stepId are required"})
		return
	}
	var sub models.Submission
	if err := DB.First(&sub, "id = ?", submissionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "submission not found, sync it first"})
		return
	}

	upload, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return
	}
	taskID := uuid.New().String()
	archivePath := filepath.Join(config.Upload, taskID, upload.Filename)
	if err := c.SaveUploadedFile(upload, archivePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := methods.Unzip(archivePath); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ext := filepath.Ext(archivePath)
	extractDir := archivePath[:len(archivePath)-len(ext)]
	var responses []UploadResponse
	filepath.Walk(extractDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		mt, _ := detectMime(path)
		file := models.File{
			ID:           uuid.New().String(),
			SubmissionID: submissionID,
			StepID:       stepID,
			FileName:     info.Name(),
			FileSize:     info.Size(),
			MimeType:     mt,
		}
		file = file.WithLocalPath(path)
		if err := DB.Create(&file).Error; err != nil {
			log.Printf("Cannot register extracted file %s: %v", path, err)
			return nil
		}
		responses = append(responses, UploadResponse{FileID: file.ID, FileName: file.FileName, Synced: true})
		return nil
	})

	log.Printf("Archive %s ingested: %d file(s) for submission %s", upload.Filename, len(responses), submissionID)
	c.JSON(http.StatusOK, gin.H{"files": responses, "count": len(responses)})
}

func detectMime(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	head := make([]byte, 3072)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return "", err
	}
	return mimetype.Detect(head[:n]).String(), nil
}
