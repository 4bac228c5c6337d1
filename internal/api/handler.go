package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"repairshop-backend/config"
	"repairshop-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store     store.Store
	queryMode config.QueryMode
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, queryMode config.QueryMode) *Handler {
	return &Handler{
		store:     s,
		queryMode: queryMode,
	}
}

// storeError classifies a store failure into the response taxonomy:
// missing row 404, natural-key duplicate 409, dangling reference 400,
// anything else 500. Store errors carry translated kinds, so the checks are
// structural, never string matches. The raw error is logged server-side;
// only a generic message reaches the caller on 500.
func (h *Handler) storeError(c *gin.Context, entity string, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": entity + " not found"})
	case errors.Is(err, gorm.ErrDuplicatedKey):
		c.JSON(http.StatusConflict, gin.H{"error": entity + " already exists"})
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown client or machine reference"})
	default:
		log.Printf("store error (%s): %v", entity, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// updateSet copies the recognized keys of a raw payload into a column
// update set. Unrecognized keys are ignored so superset payloads from
// callers stay valid.
func updateSet(raw map[string]any, recognized map[string]string) map[string]any {
	fields := make(map[string]any)
	for key, column := range recognized {
		if v, ok := raw[key]; ok {
			fields[column] = v
		}
	}
	return fields
}
