package panel

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/crm-obras-2n/crm-obras-backend/internal/acciones"
	"github.com/crm-obras-2n/crm-obras-backend/internal/proyectos/domain"
)

// Source supplies the project list and the current time.
type Source interface {
	All(ctx context.Context) ([]domain.Project, error)
	Now() time.Time
}

type Handler struct {
	src Source
	log *zap.Logger
}

func NewHandler(src Source, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{src: src, log: log}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.summary)
	rg.GET("/acciones", h.actions)
	rg.GET("/dashboard", h.dashboard)
	rg.GET("/kanban", h.kanban)
}

func (h *Handler) load(c *gin.Context) ([]domain.Project, bool) {
	items, err := h.src.All(c.Request.Context())
	if err != nil {
		h.log.Error("load projects failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to load projects"})
		return nil, false
	}
	return items, true
}

func (h *Handler) summary(c *gin.Context) {
	items, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "panel": Summary(items, h.src.Now())})
}

func (h *Handler) actions(c *gin.Context) {
	items, ok := h.load(c)
	if !ok {
		return
	}
	all := acciones.Build(items)
	b := acciones.Partition(all, h.src.Now())
	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"acciones":  b,
		"total":     b.Total(),
		"pendiente": len(all),
	})
}

func (h *Handler) dashboard(c *gin.Context) {
	items, ok := h.load(c)
	if !ok {
		return
	}
	topN, _ := strconv.Atoi(c.DefaultQuery("top", strconv.Itoa(DefaultTopN)))
	c.JSON(http.StatusOK, gin.H{"ok": true, "dashboard": Dashboard(items, topN)})
}

func (h *Handler) kanban(c *gin.Context) {
	items, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "columnas": Kanban(items)})
}
