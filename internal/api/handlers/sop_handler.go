package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/husnainkhadir/sop-generator/internal/services"
	"github.com/husnainkhadir/sop-generator/internal/utils"
)

type SopHandler struct {
	svc services.SopService
}

func NewSopHandler(svc services.SopService) *SopHandler {
	return &SopHandler{svc: svc}
}

type CreateSopRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

func (h *SopHandler) Create(c *gin.Context) {
	var req CreateSopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SopHandler.Create", "invalid request body", err))
		return
	}

	sop, err := h.svc.Create(c.Request.Context(), req.Title, req.Description, req.Tags)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sop)
}

func (h *SopHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	sops, err := h.svc.List(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sops)
}

func (h *SopHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SopHandler.Get", "invalid sop id", err))
		return
	}

	sop, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sop)
}
