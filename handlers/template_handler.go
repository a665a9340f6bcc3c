package handlers

import (
	"net/http"
	"os"

	"defesadigital-backend/catalog"

	"github.com/gin-gonic/gin"
)

// TemplateHandler exposes the template catalog for inspection and reload
type TemplateHandler struct {
	catalog      *catalog.Catalog
	templatesDir string
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(c *catalog.Catalog, templatesDir string) *TemplateHandler {
	return &TemplateHandler{
		catalog:      c,
		templatesDir: templatesDir,
	}
}

// ListTemplates handles GET /api/templates
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.catalog.Templates(),
	})
}

// ReloadTemplates handles POST /api/templates/reload. The reload is an
// atomic snapshot swap: a malformed template source leaves the current
// catalog untouched.
func (h *TemplateHandler) ReloadTemplates(c *gin.Context) {
	if err := h.catalog.Reload(os.DirFS(h.templatesDir)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RELOAD_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"templates": h.catalog.Size(),
		},
	})
}
