package catalog

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"pangan/internal/middleware"
)

type Handler struct {
	service *Service
	indexes IndexLister
}

// NewHandler serves the catalog. A nil indexes leaves out the
// /countries/inflations feed.
func NewHandler(service *Service, indexes IndexLister) *Handler {
	return &Handler{service: service, indexes: indexes}
}

type idsRequest struct {
	IDs []string `json:"ids"`
}

// --------------------------------------------------
// Countries
// --------------------------------------------------
func (h *Handler) ListCountries(c *gin.Context) {
	countries, err := h.service.ListCountries(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, countries)
}

func (h *Handler) GetCountry(c *gin.Context) {
	country, err := h.service.GetCountry(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, country)
}

func (h *Handler) ListCountryInflations(c *gin.Context) {
	countries, err := h.service.CountriesWithInflation(c.Request.Context(), h.indexes)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, countries)
}

func (h *Handler) CreateCountry(c *gin.Context) {
	var req CountryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	country, err := h.service.CreateCountry(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, country)
}

func (h *Handler) UpsertCountries(c *gin.Context) {
	var req struct {
		Rows []CountryInput `json:"rows"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	countries, err := h.service.UpsertCountries(c.Request.Context(), middleware.Actor(c), req.Rows)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(countries), "rows": countries})
}

func (h *Handler) UpdateCountry(c *gin.Context) {
	var req CountryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	country, err := h.service.UpdateCountry(c.Request.Context(), middleware.Actor(c), c.Param("id"), req)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, country)
}

func (h *Handler) DeleteCountry(c *gin.Context) {
	h.respondDeleted(c, h.service.DeleteCountries, []string{c.Param("id")})
}

func (h *Handler) DeleteCountries(c *gin.Context) {
	var req idsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	h.respondDeleted(c, h.service.DeleteCountries, req.IDs)
}

// --------------------------------------------------
// Foods
// --------------------------------------------------
func (h *Handler) ListFoods(c *gin.Context) {
	foods, err := h.service.ListFoods(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, foods)
}

func (h *Handler) GetFood(c *gin.Context) {
	food, err := h.service.GetFood(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, food)
}

func (h *Handler) CreateFood(c *gin.Context) {
	var req FoodInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	food, err := h.service.CreateFood(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, food)
}

func (h *Handler) UpdateFood(c *gin.Context) {
	var req FoodInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	food, err := h.service.UpdateFood(c.Request.Context(), middleware.Actor(c), c.Param("id"), req)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, food)
}

func (h *Handler) DeleteFood(c *gin.Context) {
	h.respondDeleted(c, h.service.DeleteFoods, []string{c.Param("id")})
}

func (h *Handler) DeleteFoods(c *gin.Context) {
	var req idsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	h.respondDeleted(c, h.service.DeleteFoods, req.IDs)
}

type deleteFunc func(ctx context.Context, ids []string) ([]string, error)

func (h *Handler) respondDeleted(c *gin.Context, del deleteFunc, ids []string) {
	deleted, err := del(c.Request.Context(), ids)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// RegisterCountryRoutes mounts /countries style routes. Deletes cascade to
// every observation of the country, so they go on the admin group.
func (h *Handler) RegisterCountryRoutes(public, guarded, admin *gin.RouterGroup) {
	public.GET("", h.ListCountries)
	if h.indexes != nil {
		public.GET("/inflations", h.ListCountryInflations)
	}
	public.GET("/:id", h.GetCountry)

	guarded.POST("", h.CreateCountry)
	guarded.POST("/batch", h.UpsertCountries)
	guarded.PUT("/:id", h.UpdateCountry)

	admin.DELETE("", h.DeleteCountries)
	admin.DELETE("/:id", h.DeleteCountry)
}

func (h *Handler) RegisterFoodRoutes(public, guarded, admin *gin.RouterGroup) {
	public.GET("", h.ListFoods)
	public.GET("/:id", h.GetFood)

	guarded.POST("", h.CreateFood)
	guarded.PUT("/:id", h.UpdateFood)

	admin.DELETE("", h.DeleteFoods)
	admin.DELETE("/:id", h.DeleteFood)
}
