package routers

import (
	"github.com/4rk4ng3l/TowerFormsBackEnd/config"
	"github.com/4rk4ng3l/TowerFormsBackEnd/models"
	"github.com/4rk4ng3l/TowerFormsBackEnd/services"
	"github.com/4rk4ng3l/TowerFormsBackEnd/views"
	"github.com/gin-gonic/gin"
)

func FormRouters(r *gin.Engine) {
	UserController := &views.UserController{
		Reconciler: services.NewReconciler(models.DB, config.Upload),
	}

	SyncRouter := r.Group("/sync")
	{
		SyncRouter.POST("/submissions", UserController.SyncSubmissions)
		SyncRouter.GET("/pending", UserController.GetPendingSync)
		SyncRouter.GET("/submissions/:submissionId/validation", UserController.ValidateSubmission)
	}

	FileRouter := r.Group("/files")
	{
		FileRouter.POST("/upload", UserController.UploadFile)
		FileRouter.POST("/upload-archive", UserController.UploadStepArchive)
		FileRouter.Static("/Uploads", config.Upload)
	}

	ExportRouter := r.Group("/export")
	{
		ExportRouter.GET("/:submissionId/excel", UserController.ExportExcel)
		ExportRouter.GET("/:submissionId/step/:stepNumber/images", UserController.ExportStepImages)
		ExportRouter.GET("/:submissionId/package", UserController.ExportPackage)
		ExportRouter.Static("/OutFile", config.Exports)
	}
}
