package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sincelove/chat-backend/internal/config"
	"github.com/sincelove/chat-backend/internal/handler"
	"github.com/sincelove/chat-backend/internal/middleware"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	messageHandler *handler.MessageHandler,
	conversationHandler *handler.ConversationHandler,
	cfg *config.Config,
) {
	api := router.Group("/api")
	if cfg.Server.APIKey != "" {
		api.Use(middleware.APIKeyAuth(middleware.StaticAPIKey(cfg.Server.APIKey)))
	}

	// Messages
	messages := api.Group("/message")
	messages.POST("", messageHandler.CreateMessage)
	messages.GET("/:room", messageHandler.ListMessages)
	messages.GET("/:room/search", messageHandler.SearchMessages)
	messages.DELETE("/:id", messageHandler.DeleteMessage)

	// Read receipts
	api.POST("/chat/read", messageHandler.MarkRead)

	// Conversations (static segments before the :id_user wildcard)
	conversations := api.Group("/conversation")
	conversations.POST("", conversationHandler.OpenConversation)
	conversations.GET("/lastone", conversationHandler.LastConversation)
	conversations.GET("/:id", conversationHandler.GetConversation)

	api.GET("/:id_user/conversations", conversationHandler.ListConversations)
}
