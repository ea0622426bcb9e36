package bookmarks

import (
	"github.com/gofiber/fiber/v2"

	"safewalk-client/internal/geo"
)

func RegisterRoutes(r fiber.Router, store *Store) {
	r.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"bookmarks": store.List()})
	})

	r.Post("/", func(c *fiber.Ctx) error {
		var body struct {
			Name  string    `json:"name"`
			Start geo.Point `json:"start"`
			End   geo.Point `json:"end"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		bm, err := store.Add(body.Name, body.Start, body.End)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if bm == nil {
			// blank name is a silent no-op
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Status(fiber.StatusCreated).JSON(bm)
	})

	r.Delete("/:id", func(c *fiber.Ctx) error {
		if !store.Remove(c.Params("id")) {
			return fiber.NewError(fiber.StatusNotFound, "bookmark not found")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
