// Package safety exposes the backend's safety collaborators through the
// local gateway. The handlers are thin proxies: they validate input shape,
// forward to the backend, and map transport failures onto a retryable 502.
package safety

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"safewalk-client/internal/api"
	"safewalk-client/internal/geo"
)

// Backend is the slice of the safety backend these proxies forward to.
// *api.Client satisfies it.
type Backend interface {
	Alerts(ctx context.Context, at geo.Point, timeOfDay api.TimeBucket) ([]api.Alert, error)
	ScoreSegments(ctx context.Context, req api.ScoreRequest) (api.ScoreResponse, error)
	RequestCompanion(ctx context.Context, req api.CompanionRequest) (string, error)
	MatchCompanions(ctx context.Context, userUID string) ([]api.CompanionMatch, error)
	SubmitReport(ctx context.Context, report api.Report) (string, error)
	TriggerSOS(ctx context.Context, req api.SOSRequest) (api.Ack, error)
	AutoSOSCheck(ctx context.Context, check api.AutoSOSCheck) (api.AutoSOSResult, error)
	ShareText(ctx context.Context, req api.ShareRequest) (string, error)
	NotifyGuardians(ctx context.Context, req api.GuardianNotify) (api.Ack, error)
}

func RegisterRoutes(r fiber.Router, backend Backend) {
	r.Get("/alerts", func(c *fiber.Ctx) error {
		lat, err := strconv.ParseFloat(c.Query("lat"), 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "lat required")
		}
		lon, err := strconv.ParseFloat(c.Query("lon"), 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "lon required")
		}
		at := geo.Point{Lat: lat, Lon: lon}
		if err := at.Validate(); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		bucket := api.TimeBucket(c.Query("time_of_day", string(api.TimeDay)))
		if !bucket.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "unknown time bucket")
		}
		alerts, err := backend.Alerts(c.Context(), at, bucket)
		if err != nil {
			return proxyError(err, "could not fetch alerts")
		}
		if alerts == nil {
			alerts = []api.Alert{}
		}
		return c.JSON(fiber.Map{"alerts": alerts})
	})

	r.Post("/score", func(c *fiber.Ctx) error {
		var req api.ScoreRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if len(req.Segments) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "segments required")
		}
		if !req.Mode.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "unknown mode")
		}
		if !req.TimeOfDay.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "unknown time bucket")
		}
		resp, err := backend.ScoreSegments(c.Context(), req)
		if err != nil {
			return proxyError(err, "could not score segments")
		}
		return c.JSON(resp)
	})

	r.Post("/reports", func(c *fiber.Ctx) error {
		var report api.Report
		if err := c.BodyParser(&report); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if report.Category == "" || report.ReporterUID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "category and reporter_uid required")
		}
		if err := report.Location.Validate(); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		id, err := backend.SubmitReport(c.Context(), report)
		if err != nil {
			return proxyError(err, "could not submit report")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"report_id": id})
	})

	r.Post("/sos/trigger", func(c *fiber.Ctx) error {
		var req api.SOSRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.UserUID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_uid required")
		}
		if err := req.Location.Validate(); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		ack, err := backend.TriggerSOS(c.Context(), req)
		if err != nil {
			return proxyError(err, "could not trigger sos")
		}
		return c.JSON(ack)
	})

	r.Post("/sos/auto-check", func(c *fiber.Ctx) error {
		var check api.AutoSOSCheck
		if err := c.BodyParser(&check); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if check.UserUID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_uid required")
		}
		result, err := backend.AutoSOSCheck(c.Context(), check)
		if err != nil {
			return proxyError(err, "could not run auto sos check")
		}
		return c.JSON(result)
	})

	r.Post("/companions/request", func(c *fiber.Ctx) error {
		var req api.CompanionRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.UserUID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_uid required")
		}
		if err := req.Origin.Validate(); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := req.Destination.Validate(); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		id, err := backend.RequestCompanion(c.Context(), req)
		if err != nil {
			return proxyError(err, "could not request companion")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"request_id": id})
	})

	r.Get("/companions/match", func(c *fiber.Ctx) error {
		uid := c.Query("user_uid")
		if uid == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_uid required")
		}
		matches, err := backend.MatchCompanions(c.Context(), uid)
		if err != nil {
			return proxyError(err, "could not match companions")
		}
		if matches == nil {
			matches = []api.CompanionMatch{}
		}
		return c.JSON(fiber.Map{"matches": matches})
	})

	r.Post("/share", func(c *fiber.Ctx) error {
		var req api.ShareRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.UserUID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_uid required")
		}
		text, err := backend.ShareText(c.Context(), req)
		if err != nil {
			return proxyError(err, "could not build share text")
		}
		return c.JSON(fiber.Map{"text": text})
	})

	r.Post("/guardians/notify", func(c *fiber.Ctx) error {
		var req api.GuardianNotify
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.UserUID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_uid required")
		}
		ack, err := backend.NotifyGuardians(c.Context(), req)
		if err != nil {
			return proxyError(err, "could not notify guardians")
		}
		return c.JSON(ack)
	})
}

func proxyError(err error, msg string) error {
	var te *api.TransportError
	if errors.As(err, &te) {
		return fiber.NewError(fiber.StatusBadGateway, msg)
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
