package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/bloodconnect/bloodconnect-server/chat"
	"github.com/bloodconnect/bloodconnect-server/controllers"
	"github.com/bloodconnect/bloodconnect-server/middleware"
)

func SetupRoutes(r *gin.Engine, hub *chat.Hub) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	r.GET("/health", controllers.HealthCheck)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", controllers.Register)
			auth.POST("/login", controllers.Login)
			auth.POST("/google/login", controllers.GoogleLoginHandler)
			auth.GET("/me", middleware.AuthJWT(), controllers.Me)
		}

		profile := api.Group("/profile")
		profile.Use(middleware.AuthJWT())
		{
			profile.GET("/me", controllers.MyProfile)
			profile.PUT("/me", controllers.UpdateMyProfile)
		}

		requests := api.Group("/requests")
		requests.Use(middleware.AuthJWT())
		{
			requests.POST("", middleware.RateLimitRequestsCreate(), controllers.CreateRequest)
			requests.GET("", controllers.ListOpenRequests)
			requests.GET("/:short_id", controllers.GetRequestDetail)
			requests.POST("/:short_id/accept", middleware.RequireDonor(), controllers.AcceptRequest)
			requests.GET("/:short_id/donors", middleware.CheckRequester(), controllers.ListAcceptedDonors)
		}

		donors := api.Group("/donors")
		donors.Use(middleware.AuthJWT())
		{
			donors.POST("/:unique_id/finalize", controllers.FinalizeDonor)
		}
		api.GET("/donations/my", middleware.AuthJWT(), controllers.MyDonations)

		chatAPI := api.Group("/chat")
		chatAPI.Use(middleware.AuthJWT())
		{
			chatAPI.GET("/conversations", controllers.ListConversations)
			chatAPI.GET("/:room_id/messages", controllers.ListChatMessages)
		}
	}

	// websocket identity comes from the ?token= query param, resolved
	// inside the handler; unauthorized sockets close silently
	r.GET("/ws/chat/:room_id", controllers.ChatRoomWS(hub))
}
