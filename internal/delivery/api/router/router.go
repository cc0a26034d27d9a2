package router

import (
	"media_delivery_service/internal/delivery/api/handlers"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes 注册影片傳送相關的路由
func RegisterRoutes(app *fiber.App, mediaHandler *handlers.MediaHandler) {
	app.Get("/", handlers.ConnectCheck)
	app.Post("/debug", handlers.DebugLogFlag)

	videoRoutes := app.Group("/videos")
	if mediaHandler.Catalog != nil {
		videoRoutes.Get("/", mediaHandler.ListVideos)
	}
	videoRoutes.Get("/:id", mediaHandler.GetVideo)
	videoRoutes.Get("/:id/:file", mediaHandler.GetVideoFile)
	videoRoutes.Get("/*", mediaHandler.UnmatchedVideoPath)
}
