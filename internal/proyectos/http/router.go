package http

import "github.com/gin-gonic/gin"

// Register attaches project routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.DELETE("", h.deleteMany)
	rg.POST("/import", h.importExcel)
	rg.GET("/export/importantes", h.exportImportant)
	rg.GET("/:id", h.get)
	rg.PATCH("/:id", h.update)
	rg.GET("/:id/actividad", h.activityLog)
}
