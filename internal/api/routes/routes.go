package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/husnainkhadir/sop-generator/internal/api/handlers"
)

type Deps struct {
	Sop        *handlers.SopHandler
	Step       *handlers.StepHandler
	Transcribe *handlers.TranscribeHandler
	Transcript *handlers.TranscriptHandler
	Recording  *handlers.RecordingHandler
	WS         *handlers.WSHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	r.POST("/sops", d.Sop.Create)
	r.GET("/sops", d.Sop.List)
	r.GET("/sops/:id", d.Sop.Get)
	r.GET("/sops/:id/steps", d.Step.ListBySop)

	r.POST("/steps", d.Step.Create)
	r.PATCH("/steps/:id", d.Step.Update)

	r.POST("/transcribe", d.Transcribe.Transcribe)

	r.GET("/sessions/:session_id/transcripts", d.Transcript.ListSegments)

	r.POST("/recordings", d.Recording.Start)
	r.POST("/recordings/:id/fragments", d.Recording.AppendFragment)
	r.POST("/recordings/:id/finish", d.Recording.Finish)

	// WebSocket: live transcription
	r.GET("/ws/transcribe", d.WS.Transcribe)
}
