package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"linkup/chat"
	"linkup/config"
	"linkup/database"
	"linkup/handlers"
	"linkup/push"
	"linkup/realtime"
	"linkup/routes"
	"linkup/store"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("🚀 Starting Linkup Backend Server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("❌ Invalid configuration:", err)
	}

	// ===== CONNECT TO MONGODB WITH RETRY =====
	log.Println("🔌 Connecting to MongoDB...")

	var dbErr error
	for i := 1; i <= 3; i++ {
		if dbErr = database.Connect(cfg.MongoURI, cfg.MongoDatabase); dbErr != nil {
			log.Printf("❌ MongoDB connection attempt %d failed: %v", i, dbErr)
			time.Sleep(2 * time.Second)
			continue
		}
		break
	}
	if dbErr != nil {
		log.Fatal("❌ Failed to connect to MongoDB:", dbErr)
	}
	defer database.Disconnect()

	log.Println("✅ MongoDB connected successfully")

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
		log.Println("⚙️ Running in RELEASE mode")
	} else {
		gin.SetMode(gin.DebugMode)
		log.Println("⚙️ Running in DEBUG mode")
	}

	// ===== CONVERSATION CORE =====
	conversationStore := store.NewMongo(database.Conversations, database.Messages)
	profiles := store.NewUserDirectory(database.Users)
	chatService := chat.NewService(conversationStore, profiles)

	// The hub is created here and passed down; it is not a package-level
	// singleton.
	hub := realtime.NewHub(chatService)
	notifier := push.NewNotifier(database.PushSubs, conversationStore, hub, push.Options{
		VAPIDPublicKey:  cfg.VAPIDPublicKey,
		VAPIDPrivateKey: cfg.VAPIDPrivateKey,
		Subscriber:      cfg.PushSubscriber,
	})
	hub.SetNotifier(notifier)
	go hub.Run()

	resolver := &realtime.JWTResolver{Secret: cfg.JWTSecret, Users: profiles}
	wsHandler := realtime.ServeWS(hub, resolver)
	log.Println("✅ WebSocket endpoint: /ws")

	conversationHandler := handlers.NewConversationHandler(chatService)
	router := routes.Setup(cfg, conversationHandler, wsHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🌐 Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("❌ Server error:", err)
		}
	}()

	log.Println("✅ Server is ready and accepting connections")

	// ===== GRACEFUL SHUTDOWN =====
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("❌ Forced shutdown:", err)
	}

	log.Println("👋 Server stopped gracefully")
}
