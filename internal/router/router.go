package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/jamsesh/jamsesh/internal/handler" // import the handlers that implement business logic
)

// Register wires all routes on the provided Echo instance. The catalog
// endpoints sit behind the response-cache middleware (a no-op when
// Redis is absent); the room endpoints are never cached because their
// responses drive the playback clock and the presence heartbeat.
func Register(e *echo.Echo, party *handler.PartyHandler, catalog *handler.CatalogHandler, cacheMW echo.MiddlewareFunc) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	api := e.Group("/api")

	// Reference data the host picks from when creating a party.
	cat := api.Group("", cacheMW)
	cat.GET("/theme", catalog.GetThemes)
	cat.GET("/genre", catalog.GetGenres)
	cat.GET("/tempo", catalog.GetTempos)
	cat.GET("/mood", catalog.GetMoods)
	cat.GET("/songs", catalog.GetSongs)

	// Party lifecycle.
	api.POST("/create-party", party.CreateParty)

	room := api.Group("/room")
	room.POST("/:room_id/create-user", party.CreateUser)
	room.GET("/:room_id/:user_id", party.GetRoom)
	room.POST("/:room_id/:user_id/skip-song", party.SkipSong)
	room.POST("/:room_id/:user_id/select-attribute", party.SelectAttribute)
	room.POST("/:room_id/:user_id/song-like", party.LikeSong)
	room.POST("/:room_id/:user_id/song-dislike", party.DislikeSong)
}
