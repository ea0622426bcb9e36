package trips

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"safewalk-client/internal/api"
)

func RegisterRoutes(r fiber.Router, history *History) {
	r.Get("/:uid", func(c *fiber.Ctx) error {
		uid := c.Params("uid")
		if raw := c.Query("mode"); raw != "" {
			mode := api.Mode(raw)
			if !mode.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "unknown mode")
			}
			filtered := history.Filter(uid, mode)
			if filtered == nil {
				filtered = []api.Trip{}
			}
			return c.JSON(fiber.Map{"trips": filtered})
		}
		return c.JSON(fiber.Map{"trips": history.Trips(uid)})
	})

	r.Get("/:uid/summary", func(c *fiber.Ctx) error {
		summary, ok := history.Summary(c.Params("uid"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "summary not loaded")
		}
		return c.JSON(summary)
	})

	r.Post("/:uid/reload", func(c *fiber.Ctx) error {
		uid := c.Params("uid")
		if err := history.Load(c.Context(), uid); err != nil {
			// partial loads still updated their half of the cache
			return fiber.NewError(fiber.StatusBadGateway, "could not load trips")
		}
		return c.JSON(fiber.Map{"trips": history.Trips(uid)})
	})

	r.Delete("/:uid/:tripID", func(c *fiber.Ctx) error {
		uid := c.Params("uid")
		if err := history.Remove(c.Context(), c.Params("tripID")); err != nil {
			var te *api.TransportError
			if errors.As(err, &te) && te.Status == http.StatusNotFound {
				return fiber.NewError(fiber.StatusNotFound, "trip not found")
			}
			return fiber.NewError(fiber.StatusBadGateway, "could not delete trip")
		}
		// refresh is best effort; a failed reload leaves a stale cache only
		_ = history.Load(c.Context(), uid)
		return c.SendStatus(fiber.StatusNoContent)
	})
}
