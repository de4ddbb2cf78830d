package services

import (
	"archive/zip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/4rk4ng3l/TowerFormsBackEnd/methods"
	"github.com/4rk4ng3l/TowerFormsBackEnd/models"
)

// ExportStepImages bundles every stored image of one form step into a zip.
// Entries are named after the question each image answers so the archive is
// readable without the app.
func ExportStepImages(agg *ExportAggregate, stepNumber int, outDir string) (*ExportResult, error) {
	step, ok := agg.Form.StepByNumber(stepNumber)
	if !ok {
		return nil, methods.NotFoundf("step %d not found in form %s", stepNumber, agg.Form.ID)
	}

	var files []models.File
	for _, f := range agg.Files {
		if f.StepID == step.ID {
			files = append(files, f)
		}
	}
	if len(files) == 0 {
		return nil, methods.Validationf("step %d has no files to export", stepNumber)
	}

	questionText := map[string]string{}
	for _, q := range step.Questions {
		questionText[q.ID] = q.QuestionText
	}

	// Group by question so repeated shots of the same item get an index
	// suffix instead of clobbering each other.
	groups := map[string][]models.File{}
	for _, f := range files {
		key := "no_question"
		if f.QuestionID != nil {
			key = *f.QuestionID
		}
		groups[key] = append(groups[key], f)
	}

	storage := fmt.Sprintf("submission_%s_step_%d_images_%d.zip",
		agg.Submission.ID, stepNumber, time.Now().UnixMilli())
	path := filepath.Join(outDir, storage)

	out, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	added := 0
	for key, group := range groups {
		base := "imagen"
		if text, ok := questionText[key]; ok && text != "" {
			base = methods.SanitizeFileName(text)
		}
		for i, f := range group {
			if f.LocalPath == nil {
				log.Printf("File %s has no stored bytes, skipping", f.ID)
				continue
			}
			name := base
			if len(group) > 1 {
				name = fmt.Sprintf("%s_%d", base, i+1)
			}
			name += filepath.Ext(f.FileName)
			if err := addZipEntry(zw, name, *f.LocalPath); err != nil {
				log.Printf("Cannot add %s to archive: %v", *f.LocalPath, err)
				continue
			}
			added++
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	if added == 0 {
		os.Remove(path)
		return nil, methods.Validationf("step %d has no stored files on disk", stepNumber)
	}

	display := fmt.Sprintf("%s_Step%d_Imagenes.zip", methods.SanitizeFileName(agg.Form.Name), stepNumber)
	return &ExportResult{Path: path, DisplayName: display}, nil
}

func addZipEntry(zw *zip.Writer, name, srcPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()

	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}
