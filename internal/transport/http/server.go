package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"bioregtool/internal/bootstrap"
	"bioregtool/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.Default())

	healthHandler := handler.NewHealthHandler(app)
	questionnaireHandler := handler.NewQuestionnaireHandler(app.Matcher)
	chatHandler := handler.NewChatHandler(app.Chat)
	attachmentHandler := handler.NewAttachmentHandler(app.Attachments)
	guidelineHandler := handler.NewGuidelineHandler(app.Guidelines)

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"service": app.Config.App.Name, "status": "running"})
	})
	router.GET("/healthz", healthHandler.Check)

	router.POST("/questionnaire", questionnaireHandler.Submit)

	router.POST("/chat", chatHandler.SendMessage)
	router.POST("/chat/stream", chatHandler.StreamMessage)
	router.POST("/chat/sessions", chatHandler.CreateSession)
	router.GET("/chat/sessions", chatHandler.ListSessions)
	router.DELETE("/chat/sessions/:id", chatHandler.DeleteSession)
	router.GET("/chat/history", chatHandler.GetHistory)

	router.POST("/chat/attachments/upload", attachmentHandler.Upload)
	router.GET("/chat/attachments", attachmentHandler.List)
	router.DELETE("/chat/attachments/:id", attachmentHandler.Delete)

	router.POST("/guidelines", guidelineHandler.Ingest)
	router.POST("/guidelines/upload", guidelineHandler.Upload)
	router.GET("/guidelines", guidelineHandler.List)
	router.GET("/guidelines/:id", guidelineHandler.Get)
	router.DELETE("/guidelines/:id", guidelineHandler.Delete)
	router.POST("/guidelines/search", guidelineHandler.Search)

	return router
}
