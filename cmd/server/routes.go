package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"leadflow.backend/internal/interfaces/http/handlers"
	"leadflow.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	authHandler      *handlers.AuthHandler
	profileHandler   *handlers.ProfileHandler
	leadHandler      *handlers.LeadHandler
	activityHandler  *handlers.ActivityHandler
	webhookHandler   *handlers.WebhookHandler
	feedHandler      *handlers.FeedHandler
	dashboardHandler *handlers.DashboardHandler
	adsHandler       *handlers.AdsHandler
	authMiddleware   gin.HandlerFunc
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Session-Id, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/signup", d.authHandler.Signup)
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/refresh", d.authHandler.Refresh)
			auth.POST("/logout", d.authHandler.Logout)
			auth.GET("/me", d.authMiddleware, d.authHandler.GetMe)
		}

		// Profile routes (protected)
		profile := v1.Group("/profile")
		profile.Use(d.authMiddleware)
		{
			profile.GET("", d.profileHandler.Get)
			profile.PUT("", d.profileHandler.Update)
		}

		// Lead routes (protected)
		leads := v1.Group("/leads")
		leads.Use(d.authMiddleware)
		{
			leads.GET("", d.leadHandler.List)
			leads.POST("", d.leadHandler.Create)
			leads.GET("/:id", d.leadHandler.Get)
			leads.PATCH("/:id/status", d.leadHandler.UpdateStatus)
			leads.PATCH("/:id/assign", d.leadHandler.Assign)
			leads.PATCH("/:id/category", d.leadHandler.SetCategory)
		}

		// Audit log (protected; listing is super_admin only, enforced in
		// the usecase)
		activity := v1.Group("/activity")
		activity.Use(d.authMiddleware)
		{
			activity.GET("", d.activityHandler.List)
			activity.POST("", d.activityHandler.Append)
		}

		// Feed routes (protected)
		feed := v1.Group("/feed")
		feed.Use(d.authMiddleware)
		{
			feed.GET("", d.feedHandler.List)
			feed.POST("", d.feedHandler.Create)
			feed.POST("/:id/like", d.feedHandler.ToggleLike)
			feed.PUT("/:id", d.feedHandler.Edit)
		}

		// Dashboard (protected)
		dashboard := v1.Group("/dashboard")
		dashboard.Use(d.authMiddleware)
		{
			dashboard.GET("/stats", d.dashboardHandler.Stats)
		}

		// Ad platform (protected, admin only)
		ads := v1.Group("/ads")
		ads.Use(d.authMiddleware, middleware.RequireAdmin())
		{
			ads.GET("/accounts", d.adsHandler.Accounts)
			ads.GET("/insights", d.adsHandler.Insights)
		}
		conversions := v1.Group("/conversions")
		conversions.Use(d.authMiddleware, middleware.RequireAdmin())
		{
			conversions.POST("/send", d.adsHandler.SendConversion)
		}

		// Webhook (authenticated by signature, not by session)
		webhooks := v1.Group("/webhooks")
		{
			webhooks.GET("/facebook", d.webhookHandler.Verify)
			webhooks.POST("/facebook", d.webhookHandler.Receive)
		}
	}
}
