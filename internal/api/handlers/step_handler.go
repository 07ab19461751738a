package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/husnainkhadir/sop-generator/internal/models"
	"github.com/husnainkhadir/sop-generator/internal/services"
	"github.com/husnainkhadir/sop-generator/internal/utils"
)

type StepHandler struct {
	svc services.StepService
}

func NewStepHandler(svc services.StepService) *StepHandler {
	return &StepHandler{svc: svc}
}

type CreateStepRequest struct {
	SopID          int64           `json:"sop_id" binding:"required"`
	Order          int             `json:"order" binding:"required"`
	Instruction    string          `json:"instruction" binding:"required"`
	Screenshot     string          `json:"screenshot"`
	RecordingURL   string          `json:"recording_url"`
	Transcription  string          `json:"transcription"`
	RefinedContent string          `json:"refined_content"`
	Metadata       json.RawMessage `json:"metadata"`
}

func (h *StepHandler) Create(c *gin.Context) {
	var req CreateStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "StepHandler.Create", "invalid request body", err))
		return
	}

	step := &models.Step{
		SopID:          req.SopID,
		Order:          req.Order,
		Instruction:    req.Instruction,
		Screenshot:     req.Screenshot,
		RecordingURL:   req.RecordingURL,
		Transcription:  req.Transcription,
		RefinedContent: req.RefinedContent,
		Metadata:       datatypes.JSON(req.Metadata),
	}

	created, err := h.svc.Create(c.Request.Context(), step)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, created)
}

func (h *StepHandler) ListBySop(c *gin.Context) {
	sopID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "StepHandler.ListBySop", "invalid sop id", err))
		return
	}

	steps, err := h.svc.ListBySop(c.Request.Context(), sopID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, steps)
}

type UpdateStepRequest struct {
	Order          *int             `json:"order,omitempty"`
	Instruction    *string          `json:"instruction,omitempty"`
	Screenshot     *string          `json:"screenshot,omitempty"`
	RecordingURL   *string          `json:"recording_url,omitempty"`
	Transcription  *string          `json:"transcription,omitempty"`
	RefinedContent *string          `json:"refined_content,omitempty"`
	Metadata       *json.RawMessage `json:"metadata,omitempty"`
}

func (h *StepHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "StepHandler.Update", "invalid step id", err))
		return
	}

	var req UpdateStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "StepHandler.Update", "invalid request body", err))
		return
	}

	upd := services.StepUpdate{
		Order:          req.Order,
		Instruction:    req.Instruction,
		Screenshot:     req.Screenshot,
		RecordingURL:   req.RecordingURL,
		Transcription:  req.Transcription,
		RefinedContent: req.RefinedContent,
	}
	if req.Metadata != nil {
		md := datatypes.JSON(*req.Metadata)
		upd.Metadata = &md
	}

	updated, err := h.svc.Update(c.Request.Context(), id, upd)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}
