package planner

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"safewalk-client/internal/api"
	"safewalk-client/internal/geo"
	"safewalk-client/internal/stream"
)

// BookmarkSource resolves a saved bookmark into its point pair.
type BookmarkSource interface {
	Use(id string) (start, end geo.Point, ok bool)
}

func RegisterRoutes(r fiber.Router, mgr *Manager, recorder TripRecorder, bookmarks BookmarkSource, hub *stream.Hub) {
	broadcast := func(uid string, s *Session) {
		if hub == nil {
			return
		}
		payload, _ := json.Marshal(s.Snapshot())
		hub.Broadcast(uid, payload)
	}

	r.Get("/:uid", func(c *fiber.Ctx) error {
		return c.JSON(mgr.Get(c.Params("uid")).Snapshot())
	})

	r.Put("/:uid/points", func(c *fiber.Ctx) error {
		var body struct {
			Start *geo.Point `json:"start"`
			End   *geo.Point `json:"end"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if body.Start == nil && body.End == nil {
			return fiber.NewError(fiber.StatusBadRequest, "start or end required")
		}
		uid := c.Params("uid")
		sess := mgr.Get(uid)
		if err := sess.SetPoints(c.Context(), body.Start, body.End); err != nil {
			return inputError(err)
		}
		broadcast(uid, sess)
		return c.JSON(sess.Snapshot())
	})

	r.Post("/:uid/pick", func(c *fiber.Ctx) error {
		var body struct {
			Target geo.PickTarget `json:"target"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		uid := c.Params("uid")
		sess := mgr.Get(uid)
		sess.SetPickTarget(body.Target)
		broadcast(uid, sess)
		return c.JSON(sess.Snapshot())
	})

	r.Post("/:uid/click", func(c *fiber.Ctx) error {
		var p geo.Point
		if err := c.BodyParser(&p); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		uid := c.Params("uid")
		sess := mgr.Get(uid)
		applied, err := sess.ConsumeClick(c.Context(), p)
		if err != nil {
			return inputError(err)
		}
		if applied {
			broadcast(uid, sess)
		}
		return c.JSON(fiber.Map{"applied": applied, "session": sess.Snapshot()})
	})

	r.Put("/:uid/mode", func(c *fiber.Ctx) error {
		var body struct {
			Mode api.Mode `json:"mode"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		uid := c.Params("uid")
		sess := mgr.Get(uid)
		if err := sess.SetMode(c.Context(), body.Mode); err != nil {
			return inputError(err)
		}
		broadcast(uid, sess)
		return c.JSON(sess.Snapshot())
	})

	r.Put("/:uid/time", func(c *fiber.Ctx) error {
		var body struct {
			TimeOfDay api.TimeBucket `json:"time_of_day"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		uid := c.Params("uid")
		sess := mgr.Get(uid)
		if err := sess.SetTimeOfDay(c.Context(), body.TimeOfDay); err != nil {
			return inputError(err)
		}
		broadcast(uid, sess)
		return c.JSON(sess.Snapshot())
	})

	r.Put("/:uid/auto", func(c *fiber.Ctx) error {
		var body struct {
			Enabled bool `json:"enabled"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		uid := c.Params("uid")
		sess := mgr.Get(uid)
		sess.SetAutoRefresh(body.Enabled)
		broadcast(uid, sess)
		return c.JSON(sess.Snapshot())
	})

	r.Post("/:uid/plan", func(c *fiber.Ctx) error {
		var body struct {
			Start     *geo.Point     `json:"start"`
			End       *geo.Point     `json:"end"`
			Mode      api.Mode       `json:"mode"`
			TimeOfDay api.TimeBucket `json:"time_of_day"`
		}
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}
		uid := c.Params("uid")
		sess := mgr.Get(uid)
		ov := &Overrides{Start: body.Start, End: body.End, Mode: body.Mode, TimeOfDay: body.TimeOfDay}
		if err := sess.Plan(c.Context(), ov); err != nil {
			broadcast(uid, sess)
			return inputError(err)
		}
		broadcast(uid, sess)
		return c.JSON(sess.Snapshot())
	})

	r.Post("/:uid/alternative", func(c *fiber.Ctx) error {
		var body struct {
			Index int `json:"index"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		uid := c.Params("uid")
		sess := mgr.Get(uid)
		if err := sess.SelectAlternative(body.Index); err != nil {
			return inputError(err)
		}
		broadcast(uid, sess)
		return c.JSON(sess.Snapshot())
	})

	r.Post("/:uid/trip", func(c *fiber.Ctx) error {
		uid := c.Params("uid")
		sess := mgr.Get(uid)
		trip, err := sess.LogTrip(c.Context(), uid, recorder)
		if err != nil {
			if errors.Is(err, ErrNoActiveRoute) {
				return fiber.NewError(fiber.StatusConflict, err.Error())
			}
			return fiber.NewError(fiber.StatusBadGateway, "could not save trip")
		}
		return c.Status(fiber.StatusCreated).JSON(trip)
	})

	r.Post("/:uid/bookmark/:id", func(c *fiber.Ctx) error {
		start, end, ok := bookmarks.Use(c.Params("id"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "bookmark not found")
		}
		uid := c.Params("uid")
		sess := mgr.Get(uid)
		if err := sess.SetPoints(c.Context(), &start, &end); err != nil {
			return inputError(err)
		}
		broadcast(uid, sess)
		return c.JSON(sess.Snapshot())
	})
}

// inputError maps session errors onto HTTP statuses. Planning transport
// failures surface as a retryable 502.
func inputError(err error) error {
	var oor geo.ErrOutOfRange
	var te *api.TransportError
	switch {
	case errors.As(err, &oor),
		errors.Is(err, ErrInvalidMode),
		errors.Is(err, ErrInvalidTimeBucket):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNoSuchAlternative):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrNoActiveRoute):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.As(err, &te):
		return fiber.NewError(fiber.StatusBadGateway, "could not compute route")
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
