package clientes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	repo Repository
	log  *zap.Logger
}

func NewHandler(repo Repository, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{repo: repo, log: log}
}

// Register attaches client routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.create)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.log.Error("list clients failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to load clients"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "clientes": items, "total": len(items)})
}

type createReq struct {
	Name       string `json:"nombre"`
	Company    string `json:"empresa"`
	ClientType string `json:"tipo_cliente"`
	Email      string `json:"email"`
	Phone      string `json:"telefono"`
	City       string `json:"ciudad"`
	Province   string `json:"provincia"`
	Notes      string `json:"notas"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	client, err := h.repo.Create(c.Request.Context(), Client{
		Name:       req.Name,
		Company:    req.Company,
		ClientType: req.ClientType,
		Email:      req.Email,
		Phone:      req.Phone,
		City:       req.City,
		Province:   req.Province,
		Notes:      req.Notes,
	})
	if err != nil {
		if errors.Is(err, ErrNameRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
			return
		}
		h.log.Error("create client failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to create client"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "cliente": client})
}
