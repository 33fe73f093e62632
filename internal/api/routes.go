package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	{
		api.GET("/properties", handler.GetNewBuilds)
		api.GET("/properties/:reference", handler.GetPropertyByReference)
		api.GET("/inland", handler.GetInlandProperties)
		api.GET("/references", handler.GetReferences)
		api.GET("/stats", handler.GetStats)
		api.GET("/status", handler.GetStatus)
		api.GET("/cycles", handler.GetRecentCycles)
		api.GET("/towns/unmatched", handler.GetUnmatchedTowns)
		api.POST("/refresh", handler.ForceRefresh)
	}
}
