package main

import (
	"github.com/4rk4ng3l/TowerFormsBackEnd/config"
	"github.com/4rk4ng3l/TowerFormsBackEnd/models"
	"github.com/4rk4ng3l/TowerFormsBackEnd/routers"
	"github.com/gin-gonic/gin"
)

func main() {
	models.InitDB()

	r := gin.Default()
	routers.FormRouters(r)
	r.Run(config.MainRouter)
}
