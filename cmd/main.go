package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/bloodconnect/bloodconnect-server/chat"
	"github.com/bloodconnect/bloodconnect-server/config"
	"github.com/bloodconnect/bloodconnect-server/routes"
)

func main() {
	// DB connect + AutoMigrate
	config.ConnectDB()

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return origin == "http://localhost:3000" || origin == os.Getenv("FRONTEND_ORIGIN")
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", func(c *gin.Context) {
		c.String(200, "BloodConnect server is running")
	})

	if err := r.SetTrustedProxies(nil); err != nil {
		panic(err)
	}

	// one in-process hub serves every chat room on this node
	hub := chat.NewHub()
	routes.SetupRoutes(r, hub)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on port %s\n", port)
	r.Run(":" + port)
}
