package routes

import (
	"net/http"
	"time"

	"linkup/config"
	"linkup/handlers"
	"linkup/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Setup assembles the full HTTP surface. The websocket handler is passed in
// because the hub it fronts is owned by main, not by this package.
func Setup(cfg *config.Config, conv *handlers.ConversationHandler, ws http.HandlerFunc) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	auth := handlers.NewAuthHandler(cfg.JWTSecret, cfg.TokenTTL)
	pushH := handlers.NewPushHandler(cfg.VAPIDPublicKey)

	// Public routes
	router.POST("/api/signup", auth.Signup)
	router.POST("/api/login", auth.Login)
	router.GET("/api/vapid-public-key", pushH.GetVapidPublicKey)

	// Realtime endpoint; authenticates its own handshake.
	router.GET("/ws", func(c *gin.Context) {
		ws(c.Writer, c.Request)
	})

	protected := router.Group("/api")
	protected.Use(middleware.JWTAuth(cfg.JWTSecret))

	// Profile
	protected.GET("/me", handlers.GetMe)
	protected.PUT("/me", handlers.UpdateMe)
	protected.GET("/user/:id", handlers.GetUser)
	protected.GET("/users/search", handlers.SearchUsers)

	// Friends
	protected.GET("/friends", handlers.ListFriends)
	protected.POST("/friends/request", handlers.SendFriendRequest)
	protected.POST("/friends/accept", handlers.AcceptFriendRequest)
	protected.DELETE("/friends/:id", handlers.RemoveFriend)

	// Calendar
	protected.POST("/events", handlers.CreateEvent)
	protected.GET("/events", handlers.ListMyEvents)
	protected.GET("/events/friends", handlers.ListFriendsEvents)
	protected.DELETE("/events/:id", handlers.DeleteEvent)

	// Conversations (read path; writes go through the websocket)
	protected.GET("/conversations", conv.List)
	protected.GET("/conversations/:id/messages", conv.Messages)

	// Push subscriptions
	protected.POST("/push/subscribe", pushH.SubscribePush)

	router.NoRoute(func(c *gin.Context) {
		if len(c.Request.URL.Path) >= 4 && c.Request.URL.Path[:4] == "/api" {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Endpoint not found",
				"path":  c.Request.URL.Path,
			})
			return
		}
		c.Next()
	})

	return router
}
