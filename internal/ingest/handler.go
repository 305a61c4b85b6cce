package ingest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pangan/internal/middleware"
	"pangan/internal/model"
)

type Handler struct {
	service *Service
	series  model.Series
}

func NewHandler(service *Service, series model.Series) *Handler {
	return &Handler{service: service, series: series}
}

type importRequest struct {
	Country string `json:"country"`
	Food    string `json:"food"`
	DryRun  bool   `json:"dry_run"`
	Rows    []Row  `json:"rows"`
}

// Import accepts the rows of one uploaded sheet. With dry_run set the
// normalized rows are returned with their in-sheet inflation and nothing is
// stored.
func (h *Handler) Import(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	batch := Batch{
		Series:  h.series,
		Country: req.Country,
		Food:    req.Food,
		Actor:   middleware.Actor(c),
		Rows:    req.Rows,
	}

	if req.DryRun {
		preview, err := h.service.Preview(c.Request.Context(), batch)
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": len(preview), "rows": preview, "dry_run": true})
		return
	}

	saved, err := h.service.Import(c.Request.Context(), batch)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(saved), "rows": saved})
}

func (h *Handler) RegisterRoutes(guarded *gin.RouterGroup) {
	guarded.POST("/import", h.Import)
}
