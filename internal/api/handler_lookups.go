package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetLookups handles GET /lookups: the aggregated distinct values used to
// populate selection inputs.
func (h *Handler) GetLookups(c *gin.Context) {
	values, err := h.store.Lookups(c.Request.Context())
	if err != nil {
		h.storeError(c, "lookups", err)
		return
	}
	c.JSON(http.StatusOK, values)
}
