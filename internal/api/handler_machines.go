package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"repairshop-backend/internal/model"
)

// ListMachines handles GET /machines.
func (h *Handler) ListMachines(c *gin.Context) {
	machines, err := h.store.ListMachines(c.Request.Context())
	if err != nil {
		h.storeError(c, "machines", err)
		return
	}
	c.JSON(http.StatusOK, machines)
}

// GetMachine handles GET /machines/:ns.
func (h *Handler) GetMachine(c *gin.Context) {
	machine, err := h.store.GetMachine(c.Request.Context(), c.Param("ns"))
	if err != nil {
		h.storeError(c, "machine", err)
		return
	}
	c.JSON(http.StatusOK, machine)
}

type upsertMachineRequest struct {
	NS          string `json:"ns" binding:"required"`
	Brand       string `json:"brand"`
	Class       string `json:"class"`
	Description string `json:"description"`
}

// UpsertMachine handles POST /machines: insert-or-update keyed on the
// serial number. Re-submitting a serial with different attributes updates
// them in place.
func (h *Handler) UpsertMachine(c *gin.Context) {
	var req upsertMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required field: ns"})
		return
	}

	machine := model.Machine{
		NS:          req.NS,
		Brand:       req.Brand,
		Class:       req.Class,
		Description: req.Description,
	}
	if err := h.store.UpsertMachine(c.Request.Context(), &machine); err != nil {
		h.storeError(c, "machine", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ns": machine.NS})
}
