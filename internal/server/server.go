package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"safewalk-client/internal/api"
	"safewalk-client/internal/bookmarks"
	"safewalk-client/internal/config"
	"safewalk-client/internal/planner"
	"safewalk-client/internal/safety"
	"safewalk-client/internal/storage"
	"safewalk-client/internal/stream"
	"safewalk-client/internal/trips"
)

// Server assembles the gateway: one fiber app, per-user planning sessions,
// the trip history cache, the bookmark store, and the snapshot stream hub.
type Server struct {
	App       *fiber.App
	Cfg       config.Config
	Hub       *stream.Hub
	Sessions  *planner.Manager
	History   *trips.History
	Bookmarks *bookmarks.Store
}

func NewServer(cfg config.Config, backend *api.Client, store storage.Store, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:       app,
		Cfg:       cfg,
		Hub:       stream.NewHub(redisClient),
		Sessions:  planner.NewManager(backend),
		History:   trips.NewHistory(backend),
		Bookmarks: bookmarks.NewStore(store),
	}
	s.registerRoutes(backend)
	return s
}

func (s *Server) registerRoutes(backend *api.Client) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	planner.RegisterRoutes(s.App.Group("/session"), s.Sessions, s.History, s.Bookmarks, s.Hub)
	trips.RegisterRoutes(s.App.Group("/trips"), s.History)
	bookmarks.RegisterRoutes(s.App.Group("/bookmarks"), s.Bookmarks)
	safety.RegisterRoutes(s.App.Group("/safety"), backend)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Hub)
}
