package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/husnainkhadir/sop-generator/internal/services"
)

type stubTranscription struct {
	result *services.FinalPassResult
	err    error
	calls  int
}

func (s *stubTranscription) FinalPass(ctx context.Context, audio []byte, language string) (*services.FinalPassResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func transcribeRouter(svc services.TranscriptionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewTranscribeHandler(svc, "en-US")
	r.POST("/transcribe", h.Transcribe)
	return r
}

func multipartAudio(t *testing.T, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	fw, err := w.CreateFormFile("audio", "recording.webm")
	require.NoError(t, err)
	_, err = fw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestTranscribeReturnsResult(t *testing.T) {
	svc := &stubTranscription{result: &services.FinalPassResult{
		Transcription:  "open the settings menu",
		RefinedContent: "1. Open the settings menu.",
	}}
	r := transcribeRouter(svc)

	body, contentType := multipartAudio(t, []byte("webm-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got services.FinalPassResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "1. Open the settings menu.", got.RefinedContent)
	require.Equal(t, 1, svc.calls)
}

func TestTranscribeRejectsMissingField(t *testing.T) {
	svc := &stubTranscription{}
	r := transcribeRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/transcribe", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Zero(t, svc.calls)
}

func TestTranscribeRejectsEmptyUpload(t *testing.T) {
	svc := &stubTranscription{}
	r := transcribeRouter(svc)

	body, contentType := multipartAudio(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "audio file is empty")
	require.Zero(t, svc.calls)
}
