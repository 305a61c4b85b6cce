package price

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pangan/internal/errx"
	"pangan/internal/logx"
	"pangan/internal/middleware"
	"pangan/internal/model"
)

// Handler serves one series; the router mounts one per series.
type Handler struct {
	service *Service
	series  model.Series
}

func NewHandler(service *Service, series model.Series) *Handler {
	return &Handler{service: service, series: series}
}

type observationRequest struct {
	CountryID string   `json:"country_id"`
	FoodID    string   `json:"food_id"`
	Year      int      `json:"year"`
	Month     int      `json:"month"`
	Open      *float64 `json:"open"`
	Low       *float64 `json:"low"`
	High      *float64 `json:"high"`
	Close     *float64 `json:"close"`
	Date      string   `json:"date"`
}

func (r observationRequest) input(row int) (model.ObservationInput, []errx.FieldIssue) {
	in := model.ObservationInput{
		CountryID: strings.TrimSpace(r.CountryID),
		FoodID:    strings.TrimSpace(r.FoodID),
		Year:      r.Year,
		Month:     r.Month,
		Open:      r.Open,
		Low:       r.Low,
		High:      r.High,
		Close:     r.Close,
	}
	if r.Date == "" {
		return in, nil
	}

	date, err := time.Parse(model.DateLayout, r.Date)
	if err != nil {
		return in, []errx.FieldIssue{{Row: row, Field: "date", Reason: "must be formatted as YYYY-MM-DD"}}
	}
	in.Date = date
	// year and month follow the date when the caller left them out
	if in.Year == 0 {
		in.Year = date.Year()
	}
	if in.Month == 0 {
		in.Month = int(date.Month())
	}
	return in, nil
}

// --------------------------------------------------
// Reads
// --------------------------------------------------
func (h *Handler) List(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	rows, err := h.service.List(c.Request.Context(), h.series, filter)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

func (h *Handler) Get(c *gin.Context) {
	row, err := h.service.Get(c.Request.Context(), h.series, c.Param("id"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, row)
}

func (h *Handler) Export(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	rows, err := h.service.List(c.Request.Context(), h.series, filter)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFileName(h.series)))
	c.Status(http.StatusOK)
	if err := WriteCSV(c.Writer, h.series, rows); err != nil {
		logx.Warn().Err(err).Str("series", string(h.series)).Msg("export interrupted")
	}
}

func exportFileName(series model.Series) string {
	if series.HasFood() {
		return "food-prices.csv"
	}
	return "food-price-indexes.csv"
}

func (h *Handler) bindFilter(c *gin.Context) (model.Filter, bool) {
	var params model.FilterParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return model.Filter{}, false
	}
	filter, err := params.Filter()
	if err != nil {
		middleware.RespondError(c, err)
		return model.Filter{}, false
	}
	return filter, true
}

// --------------------------------------------------
// Writes
// --------------------------------------------------
func (h *Handler) Create(c *gin.Context) {
	var req observationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	in, issues := req.input(0)
	if err := errx.Invalid(issues); err != nil {
		middleware.RespondError(c, err)
		return
	}

	saved, err := h.service.Create(c.Request.Context(), h.series, middleware.Actor(c), in)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, saved)
}

func (h *Handler) UpsertBatch(c *gin.Context) {
	var req struct {
		Rows []observationRequest `json:"rows"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	rows := make([]model.ObservationInput, len(req.Rows))
	var issues []errx.FieldIssue
	for i, r := range req.Rows {
		in, rowIssues := r.input(i + 1)
		rows[i] = in
		issues = append(issues, rowIssues...)
	}
	if err := errx.Invalid(issues); err != nil {
		middleware.RespondError(c, err)
		return
	}

	saved, err := h.service.UpsertBatch(c.Request.Context(), h.series, middleware.Actor(c), rows)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(saved), "rows": saved})
}

func (h *Handler) Update(c *gin.Context) {
	var req observationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	in, issues := req.input(0)
	if err := errx.Invalid(issues); err != nil {
		middleware.RespondError(c, err)
		return
	}

	saved, err := h.service.Update(c.Request.Context(), h.series, middleware.Actor(c), c.Param("id"), in)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, saved)
}

func (h *Handler) Delete(c *gin.Context) {
	h.deleteIDs(c, []string{c.Param("id")})
}

func (h *Handler) DeleteMany(c *gin.Context) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	h.deleteIDs(c, req.IDs)
}

func (h *Handler) deleteIDs(c *gin.Context, ids []string) {
	deleted, err := h.service.DeleteByIDs(c.Request.Context(), h.series, ids)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// RegisterRoutes mounts reads on public and writes on the guarded group.
func (h *Handler) RegisterRoutes(public, guarded *gin.RouterGroup) {
	public.GET("", h.List)
	public.GET("/export", h.Export)
	public.GET("/:id", h.Get)

	guarded.POST("", h.Create)
	guarded.POST("/batch", h.UpsertBatch)
	guarded.PUT("/:id", h.Update)
	guarded.DELETE("", h.DeleteMany)
	guarded.DELETE("/:id", h.Delete)
}
