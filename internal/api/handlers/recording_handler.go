package handlers

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/husnainkhadir/sop-generator/internal/services"
	"github.com/husnainkhadir/sop-generator/internal/utils"
)

type RecordingHandler struct {
	svc services.RecordingService
}

func NewRecordingHandler(svc services.RecordingService) *RecordingHandler {
	return &RecordingHandler{svc: svc}
}

func (h *RecordingHandler) Start(c *gin.Context) {
	id, err := h.svc.Start(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recording_id": id})
}

type AppendFragmentRequest struct {
	Data string `json:"data" binding:"required"` // base64 media bytes
}

func (h *RecordingHandler) AppendFragment(c *gin.Context) {
	const op = "RecordingHandler.AppendFragment"

	var req AppendFragmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid request body", err))
		return
	}

	fragment, err := decodeBase64Payload(req.Data)
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid base64 data", err))
		return
	}

	if err := h.svc.AppendFragment(c.Request.Context(), c.Param("id"), fragment); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

type FinishRecordingRequest struct {
	Screenshot string `json:"screenshot"`
}

func (h *RecordingHandler) Finish(c *gin.Context) {
	const op = "RecordingHandler.Finish"

	var req FinishRecordingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid request body", err))
		return
	}

	out, err := h.svc.Finish(c.Request.Context(), c.Param("id"), req.Screenshot)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

// decodeBase64Payload accepts both bare base64 and data:...;base64, URLs.
func decodeBase64Payload(raw string) ([]byte, error) {
	if i := strings.Index(raw, ","); i >= 0 && strings.HasPrefix(raw, "data:") {
		raw = raw[i+1:]
	}
	return base64.StdEncoding.DecodeString(raw)
}
