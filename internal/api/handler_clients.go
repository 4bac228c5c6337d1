package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"repairshop-backend/internal/model"
)

var clientUpdatableFields = map[string]string{
	"name":           "name",
	"address":        "address",
	"contact_person": "contact_person",
	"phone":          "phone",
	"tax_id":         "tax_id",
}

// ListClients handles GET /clients.
func (h *Handler) ListClients(c *gin.Context) {
	clients, err := h.store.ListClients(c.Request.Context())
	if err != nil {
		h.storeError(c, "clients", err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

// GetClient handles GET /clients/:id.
func (h *Handler) GetClient(c *gin.Context) {
	client, err := h.store.GetClient(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.storeError(c, "client", err)
		return
	}
	c.JSON(http.StatusOK, client)
}

type findOrCreateClientRequest struct {
	ClientID      string `json:"client_id"`
	Name          string `json:"name"`
	Address       string `json:"address"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	TaxID         string `json:"tax_id"`
}

// FindOrCreateClient handles POST /clients. An existing client is resolved
// by client_id when supplied, otherwise by name; on a miss a row is
// inserted (generating a client_id when the caller supplied none). A
// submission losing the uniqueness race answers 409.
func (h *Handler) FindOrCreateClient(c *gin.Context) {
	var req findOrCreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	if req.ClientID == "" && req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client_id or name is required"})
		return
	}

	client := model.Client{
		ClientID:      req.ClientID,
		Name:          req.Name,
		Address:       req.Address,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		TaxID:         req.TaxID,
	}

	clientID, created, err := h.store.FindOrCreateClient(c.Request.Context(), &client)
	if err != nil {
		h.storeError(c, "client", err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"client_id": clientID})
}

// UpdateClient handles PUT /clients/:id: partial update of non-key
// attributes, with the same recognized-field semantics as repairs.
func (h *Handler) UpdateClient(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	fields := updateSet(raw, clientUpdatableFields)
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	if err := h.store.UpdateClient(c.Request.Context(), c.Param("id"), fields); err != nil {
		h.storeError(c, "client", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": c.Param("id")})
}
