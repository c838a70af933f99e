package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wanderlust/internal/shared/middleware"
	"wanderlust/internal/shared/response"
	"wanderlust/internal/web"
	"wanderlust/pkg/container"
)

// errPageNotFound is shown for any unmatched route.
var errPageNotFound = errors.New("Page Not Found!!")

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()
	router.HTMLRender = c.Renderer

	// Global middlewares. Recovery sits inside Logger and Sessions so a panic
	// is still logged and the error page keeps the visitor's session.
	router.Use(
		middleware.RequestID(),
		middleware.Logger(),
		c.HTTPMetrics.Handler(),
		middleware.Sessions(c.Sessions, c.JWTManager, middleware.CookieOptions{
			Name:   c.Config.Session.CookieName,
			MaxAge: c.Config.Session.TTL,
			Secure: c.Config.Session.Secure,
		}),
		middleware.Recovery(renderPanic),
		middleware.LoadUser(c.UserService.FindActor),
	)

	setupSystemRoutes(router, c)

	c.UserHandler.RegisterRoutes(router)
	c.ListingHandler.RegisterRoutes(router)
	c.ReviewHandler.RegisterRoutes(router)

	router.NoRoute(func(ctx *gin.Context) {
		response.Respond(ctx, response.Fail(response.KindNotFound, errPageNotFound))
	})

	return router
}

func renderPanic(c *gin.Context, recovered any) {
	response.Respond(c, response.Fail(response.KindInternal, fmt.Errorf("panic: %v", recovered)))
}

// ========================================
// SYSTEM ROUTES
// ========================================
func setupSystemRoutes(router *gin.Engine, c *container.Container) {
	router.GET("/", func(ctx *gin.Context) {
		ctx.Redirect(http.StatusFound, "/listings")
	})
	router.GET("/health", healthCheckHandler(c))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(c.MetricsRegistry, promhttp.HandlerOpts{})))
	router.StaticFS("/static", web.Static())
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}

		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
		} else if err := appCtx.DB.HealthCheck(c.Request.Context()); err != nil {
			dbStatus = fmt.Sprintf("error: %v", err)
		}

		redisStatus := "ok"
		if appCtx.Cache == nil {
			redisStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.Cache.Ping(ctx); err != nil {
				redisStatus = fmt.Sprintf("error: %v", err)
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			health["status"] = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
