package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"repairshop-backend/config"
	"repairshop-backend/internal/model"
	"repairshop-backend/internal/store"
)

// repairUpdatableFields maps recognized update payload keys onto their
// store columns. The repair id is not updatable.
var repairUpdatableFields = map[string]string{
	"client_id":       "client_id",
	"ns":              "machine_ns",
	"intake_date":     "intake_date",
	"completed_date":  "completed_date",
	"status":          "status",
	"fault_desc":      "fault_desc",
	"repair_desc":     "repair_desc",
	"intermediary_id": "intermediary_id",
	"billed":          "billed",
}

// ListRepairs handles GET /repairs with optional filters. The configured
// query mode picks the composed-join path or the procedural filter
// function; the two return the same logical result set.
func (h *Handler) ListRepairs(c *gin.Context) {
	filter := store.RepairFilter{
		ClientID:  c.Query("client_id"),
		NS:        c.Query("ns"),
		Status:    c.Query("status"),
		Brand:     c.Query("brand"),
		Class:     c.Query("class"),
		FaultDesc: c.Query("fault"),
	}

	list := h.store.ListRepairs
	if h.queryMode == config.QueryModeProc {
		list = h.store.ListRepairsProc
	}

	records, err := list(c.Request.Context(), filter)
	if err != nil {
		h.storeError(c, "repairs", err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// GetRepair handles GET /repairs/:id.
func (h *Handler) GetRepair(c *gin.Context) {
	id, ok := repairID(c)
	if !ok {
		return
	}
	record, err := h.store.GetRepair(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, "repair", err)
		return
	}
	c.JSON(http.StatusOK, record)
}

type createRepairRequest struct {
	ClientID       string `json:"client_id" binding:"required"`
	NS             string `json:"ns" binding:"required"`
	IntakeDate     string `json:"intake_date" binding:"required"`
	Status         string `json:"status" binding:"required"`
	CompletedDate  string `json:"completed_date"`
	FaultDesc      string `json:"fault_desc"`
	RepairDesc     string `json:"repair_desc"`
	IntermediaryID string `json:"intermediary_id"`
	Billed         bool   `json:"billed"`
}

// CreateRepair handles POST /repairs. The four required fields must be
// present and non-empty; billed defaults to false.
func (h *Handler) CreateRepair(c *gin.Context) {
	var req createRepairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields: client_id, ns, intake_date, status"})
		return
	}

	repair := model.Repair{
		ClientRef:      req.ClientID,
		MachineNS:      req.NS,
		IntakeDate:     req.IntakeDate,
		CompletedDate:  req.CompletedDate,
		Status:         req.Status,
		FaultDesc:      req.FaultDesc,
		RepairDesc:     req.RepairDesc,
		IntermediaryID: req.IntermediaryID,
		Billed:         req.Billed,
	}

	id, err := h.store.CreateRepair(c.Request.Context(), &repair)
	if err != nil {
		h.storeError(c, "repair", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// UpdateRepair handles PUT /repairs/:id. Only recognized fields are copied
// into the update set; a payload touching none of them is rejected before
// any store call.
func (h *Handler) UpdateRepair(c *gin.Context) {
	id, ok := repairID(c)
	if !ok {
		return
	}

	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	fields := updateSet(raw, repairUpdatableFields)
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	if err := h.store.UpdateRepair(c.Request.Context(), id, fields); err != nil {
		h.storeError(c, "repair", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": id})
}

// DeleteRepair handles DELETE /repairs/:id.
func (h *Handler) DeleteRepair(c *gin.Context) {
	id, ok := repairID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteRepair(c.Request.Context(), id); err != nil {
		h.storeError(c, "repair", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func repairID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid repair id"})
		return 0, false
	}
	return id, true
}
