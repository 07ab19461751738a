package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/husnainkhadir/sop-generator/internal/services"
	"github.com/husnainkhadir/sop-generator/internal/utils"
)

// maxAudioUpload bounds the final-pass upload (matches the capture client).
const maxAudioUpload = 50 << 20

type TranscribeHandler struct {
	svc      services.TranscriptionService
	language string
}

func NewTranscribeHandler(svc services.TranscriptionService, language string) *TranscribeHandler {
	return &TranscribeHandler{svc: svc, language: language}
}

// Transcribe runs the one-shot transcribe+refine pass over a complete
// recording uploaded as multipart field "audio".
func (h *TranscribeHandler) Transcribe(c *gin.Context) {
	const op = "TranscribeHandler.Transcribe"

	fh, err := c.FormFile("audio")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "missing multipart field 'audio'", err))
		return
	}
	if fh.Size <= 0 {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "audio file is empty", nil))
		return
	}
	if fh.Size > maxAudioUpload {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "audio file too large (max 50MB)", nil))
		return
	}

	file, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to open upload", err))
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, maxAudioUpload))
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to read upload", err))
		return
	}

	result, err := h.svc.FinalPass(c.Request.Context(), audio, h.language)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
