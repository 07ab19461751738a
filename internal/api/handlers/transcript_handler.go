package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/husnainkhadir/sop-generator/internal/services"
)

type TranscriptHandler struct {
	archive *services.TranscriptArchive
}

func NewTranscriptHandler(archive *services.TranscriptArchive) *TranscriptHandler {
	return &TranscriptHandler{archive: archive}
}

// ListSegments returns the archived partial transcripts of a streaming
// session, in flush order. Segments expire with the collection TTL, so an
// empty list is a normal answer for old sessions.
func (h *TranscriptHandler) ListSegments(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "0"), 10, 64)

	segments, err := h.archive.Segments(c.Request.Context(), c.Param("session_id"), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, segments)
}
