package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"pangan/internal/auth"
	"pangan/internal/catalog"
	"pangan/internal/ingest"
	"pangan/internal/logx"
	"pangan/internal/middleware"
	"pangan/internal/model"
	"pangan/internal/price"
)

type Deps struct {
	JWTSecret    string
	AllowOrigins []string

	Catalog *catalog.Service
	Prices  *price.Service
	Ingest  *ingest.Service

	// Ping reports whether the store is reachable. Nil skips the check.
	Ping func(ctx context.Context) error
}

func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	if len(deps.AllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     deps.AllowOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// ───────────────────────── HEALTH ─────────────────────────
	r.GET("/health", func(c *gin.Context) {
		if deps.Ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Ping(ctx); err != nil {
				logx.Warn().Err(err).Msg("health check failed")
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	guard := []gin.HandlerFunc{
		middleware.AuthMiddleware(deps.JWTSecret),
		middleware.RequireWriter(),
	}
	adminOnly := []gin.HandlerFunc{
		middleware.AuthMiddleware(deps.JWTSecret),
		middleware.RequireRole(auth.RoleAdmin),
	}
	mount := func(path string) (public, guarded *gin.RouterGroup) {
		return api.Group(path), api.Group(path, guard...)
	}
	mountCatalog := func(path string) (public, guarded, admin *gin.RouterGroup) {
		public, guarded = mount(path)
		return public, guarded, api.Group(path, adminOnly...)
	}

	// ───────────────────────── REFERENCE DATA ─────────────────────────
	if deps.Catalog != nil {
		var indexes catalog.IndexLister
		if deps.Prices != nil {
			indexes = deps.Prices
		}
		h := catalog.NewHandler(deps.Catalog, indexes)
		h.RegisterCountryRoutes(mountCatalog("/countries"))
		h.RegisterFoodRoutes(mountCatalog("/foods"))
	}

	// ───────────────────────── PRICE SERIES ─────────────────────────
	series := map[string]model.Series{
		"/food-prices":        model.SeriesFood,
		"/food-price-indexes": model.SeriesIndex,
	}
	for path, s := range series {
		public, guarded := mount(path)
		if deps.Prices != nil {
			price.NewHandler(deps.Prices, s).RegisterRoutes(public, guarded)
		}
		if deps.Ingest != nil {
			ingest.NewHandler(deps.Ingest, s).RegisterRoutes(guarded)
		}
	}

	return r
}
