package views

import (
	"errors"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/4rk4ng3l/TowerFormsBackEnd/config"
	"github.com/4rk4ng3l/TowerFormsBackEnd/methods"
	"github.com/4rk4ng3l/TowerFormsBackEnd/models"
	"github.com/4rk4ng3l/TowerFormsBackEnd/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ExportExcel renders the full inspection workbook for a submission and
// returns a download URL.
func (uc *UserController) ExportExcel(c *gin.Context) {
	submissionID := c.Param("submissionId")

	agg, err := services.LoadExportAggregate(models.DB, submissionID)
	if err != nil {
		respondExportError(c, err)
		return
	}

	outDir, bsm, err := makeExportDir()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result, err := services.RenderSubmissionExcel(agg, outDir)
	if err != nil {
		respondExportError(c, err)
		return
	}

	c.JSON(http.StatusOK, ExportResponse{
		URL:      exportURL(c, bsm, filepath.Base(result.Path)),
		FileName: result.DisplayName,
	})
}

// ExportStepImages bundles a step's photos into a zip download.
func (uc *UserController) ExportStepImages(c *gin.Context) {
	submissionID := c.Param("submissionId")
	stepNumber, err := strconv.Atoi(c.Param("stepNumber"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stepNumber must be an integer"})
		return
	}

	agg, err := services.LoadExportAggregate(models.DB, submissionID)
	if err != nil {
		respondExportError(c, err)
		return
	}

	outDir, bsm, err := makeExportDir()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result, err := services.ExportStepImages(agg, stepNumber, outDir)
	if err != nil {
		respondExportError(c, err)
		return
	}

	c.JSON(http.StatusOK, ExportResponse{
		URL:      exportURL(c, bsm, filepath.Base(result.Path)),
		FileName: result.DisplayName,
	})
}

// ExportPackage renders the workbook plus every step's image zip in one
// shot, for handover to the tower operator.
func (uc *UserController) ExportPackage(c *gin.Context) {
	submissionID := c.Param("submissionId")

	agg, err := services.LoadExportAggregate(models.DB, submissionID)
	if err != nil {
		respondExportError(c, err)
		return
	}

	outDir, bsm, err := makeExportDir()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	excel, err := services.RenderSubmissionExcel(agg, outDir)
	if err != nil {
		respondExportError(c, err)
		return
	}

	// Steps without images are simply absent from the package.
	images := []StepImagesResponse{}
	for _, step := range agg.Form.OrderedSteps() {
		zipResult, err := services.ExportStepImages(agg, step.StepNumber, outDir)
		if err != nil {
			continue
		}
		images = append(images, StepImagesResponse{
			StepNumber: step.StepNumber,
			URL:        exportURL(c, bsm, filepath.Base(zipResult.Path)),
			FileName:   zipResult.DisplayName,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"excel": ExportResponse{
			URL:      exportURL(c, bsm, filepath.Base(excel.Path)),
			FileName: excel.DisplayName,
		},
		"images": images,
	})
}

func respondValidation(c *gin.Context, submissionID string) {
	agg, err := services.LoadExportAggregate(models.DB, submissionID)
	if err != nil {
		respondExportError(c, err)
		return
	}

	issues := services.ValidateSubmission(agg.Form, agg.Answers)
	issues = append(issues, services.ValidateCompleteness(agg.Form, agg.Answers)...)
	if issues == nil {
		issues = []services.ValidationIssue{}
	}
	c.JSON(http.StatusOK, gin.H{"valid": len(issues) == 0, "issues": issues})
}

func makeExportDir() (dir, bsm string, err error) {
	bsm = uuid.New().String()
	dir = filepath.Join(config.Exports, bsm)
	err = os.MkdirAll(dir, os.ModePerm)
	return dir, bsm, err
}

func exportURL(c *gin.Context, bsm, fileName string) string {
	u := &url.URL{
		Scheme: "http",
		Host:   c.Request.Host,
		Path:   "/export/OutFile/" + bsm + "/" + fileName,
	}
	return u.String()
}

func respondExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, methods.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, methods.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
