package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/crm-obras-2n/crm-obras-backend/internal/activity"
	"github.com/crm-obras-2n/crm-obras-backend/internal/auth"
	"github.com/crm-obras-2n/crm-obras-backend/internal/excel"
	"github.com/crm-obras-2n/crm-obras-backend/internal/proyectos/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// fail answers with the status matching err. Unknown errors are logged and
// hidden behind msg.
func (h *Handler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, domain.ErrNameRequired), errors.Is(err, domain.ErrNoIDs), errors.Is(err, domain.ErrInvalidDate):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": err.Error()})
	default:
		h.log.Error(msg, zap.Error(err), zap.String("path", c.FullPath()))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": msg})
	}
}

func (h *Handler) list(c *gin.Context) {
	f := domain.Filter{
		Search:  c.Query("q"),
		Phase:   strings.TrimSpace(c.Query("fase")),
		Segment: strings.TrimSpace(c.Query("segmento")),
	}
	items, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err, "failed to load projects")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "proyectos": items, "total": len(items)})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to load project")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "proyecto": p})
}

func (h *Handler) create(c *gin.Context) {
	var req projectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	project, err := req.toProject(h.svc.Location())
	if err != nil {
		h.fail(c, err, "invalid project")
		return
	}

	p, err := h.svc.Create(c.Request.Context(), auth.UserFirebaseUID(c), project)
	if err != nil {
		h.fail(c, err, "failed to create project")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "proyecto": p})
}

func (h *Handler) update(c *gin.Context) {
	var req patchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	patch, err := req.toPatch(h.svc.Location())
	if err != nil {
		h.fail(c, err, "invalid patch")
		return
	}
	if patch.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "nothing to update"})
		return
	}

	p, err := h.svc.Update(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"), patch)
	if err != nil {
		h.fail(c, err, "failed to update project")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "proyecto": p})
}

func (h *Handler) deleteMany(c *gin.Context) {
	var req deleteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	n, err := h.svc.Delete(c.Request.Context(), auth.UserFirebaseUID(c), req.IDs)
	if err != nil {
		h.fail(c, err, "failed to delete projects")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "eliminados": n})
}

func (h *Handler) activityLog(c *gin.Context) {
	if h.activity == nil {
		c.JSON(http.StatusOK, gin.H{"ok": true, "actividad": []activity.Entry{}})
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	items, err := h.activity.ListByProject(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		h.fail(c, err, "failed to load activity")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "actividad": items})
}

func (h *Handler) importExcel(c *gin.Context) {
	if h.importer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "import not available"})
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "missing file"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "cannot read file"})
		return
	}
	defer f.Close()

	res, err := h.importer.Import(c.Request.Context(), f, auth.UserFirebaseUID(c), h.svc.Now())
	if err != nil {
		h.log.Warn("excel import rejected", zap.String("file", fh.Filename), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "resultado": res})
}

func (h *Handler) exportImportant(c *gin.Context) {
	items, err := h.svc.All(c.Request.Context())
	if err != nil {
		h.fail(c, err, "failed to load projects")
		return
	}

	data, err := excel.ExportImportant(items)
	if err != nil {
		h.fail(c, err, "failed to build workbook")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="obras_importantes.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}
