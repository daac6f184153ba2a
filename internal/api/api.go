// Package api exposes the coordination core over HTTP. Actor identity
// arrives in X-User-Id / X-User-Role headers set by the fronting auth
// layer; authentication mechanics live outside this service.
package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"github.com/volunhub/volunhub/pkg/core/model"
	"github.com/volunhub/volunhub/pkg/core/points"
	"github.com/volunhub/volunhub/pkg/core/services"
)

// Store is the full persistence surface the API needs: the per-service
// interfaces plus the read-side queries.
type Store interface {
	services.MissionStore
	services.ShiftStore
	services.ParticipationStore
	services.AttendanceStore
	ListMissions(ctx context.Context) ([]model.Mission, error)
	ListShifts(ctx context.Context, missionID string) ([]model.Shift, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	UserLedger(ctx context.Context, userID string) ([]model.PointsLedgerEntry, error)
}

// Server hosts the HTTP API.
type Server struct {
	f    *fiber.App
	addr string

	store    Store
	notifier services.Notifier
	audit    services.AuditLog
	calc     *points.Calculator
	logger   *zap.Logger

	requireAttendance bool
}

// Options configures a Server.
type Options struct {
	Address           string
	Store             Store
	Notifier          services.Notifier
	Audit             services.AuditLog
	Calculator        *points.Calculator
	Logger            *zap.Logger
	RequireAttendance bool
}

func NewServer(opts Options) *Server {
	srv := &Server{
		addr:              opts.Address,
		store:             opts.Store,
		notifier:          opts.Notifier,
		audit:             opts.Audit,
		calc:              opts.Calculator,
		logger:            opts.Logger,
		requireAttendance: opts.RequireAttendance,
	}

	srv.f = fiber.New(fiber.Config{DisableStartupMessage: true})
	srv.f.Use(NewMetricHandler("api"))
	srv.f.Use(requestLogger(srv.logger))

	srv.f.Post("/api/missions", srv.createMissionHandler())
	srv.f.Get("/api/missions", srv.listMissionsHandler())
	srv.f.Get("/api/missions/:id", srv.getMissionHandler())
	srv.f.Post("/api/missions/:id/open", srv.missionTransitionHandler(services.OpenMission))
	srv.f.Post("/api/missions/:id/close", srv.missionTransitionHandler(services.CloseMission))
	srv.f.Post("/api/missions/:id/complete", srv.completeMissionHandler())
	srv.f.Post("/api/missions/:id/cancel", srv.cancelMissionHandler())

	srv.f.Post("/api/missions/:id/shifts", srv.addShiftHandler())
	srv.f.Delete("/api/shifts/:id", srv.deleteShiftHandler())

	srv.f.Post("/api/shifts/:id/applications", srv.applyHandler())
	srv.f.Post("/api/shifts/:id/volunteers", srv.addVolunteerHandler())
	srv.f.Post("/api/requests/:id/approve", srv.approveHandler())
	srv.f.Post("/api/requests/:id/reject", srv.rejectHandler())
	srv.f.Post("/api/requests/:id/cancel", srv.cancelRequestHandler())

	srv.f.Put("/api/requests/:id/attendance", srv.markAttendedHandler())
	srv.f.Delete("/api/requests/:id/attendance", srv.retractAttendanceHandler())

	srv.f.Get("/api/users/:id/points", srv.userPointsHandler())

	srv.f.Get("/metrics", getMetricsHandler())

	return srv
}

func (srv *Server) Address() string {
	return srv.addr
}

func (srv *Server) Listen() error {
	return srv.f.Listen(srv.addr)
}

func (srv *Server) Shutdown() error {
	return srv.f.Shutdown()
}

// actor reads the caller's identity from the request headers. The values are
// copied out of fiber's recycled request buffers so they stay valid after the
// handler returns.
func actor(ctx *fiber.Ctx) (model.Actor, bool) {
	id := utils.CopyString(ctx.Get("X-User-Id"))
	role := model.Role(utils.CopyString(ctx.Get("X-User-Role")))
	if id == "" || role == "" {
		return model.Actor{}, false
	}
	return model.Actor{ID: id, Role: role}, true
}

// param copies a route parameter out of fiber's recycled request buffers so
// services may retain it after the handler returns.
func param(ctx *fiber.Ctx, name string) string {
	return utils.CopyString(ctx.Params(name))
}

func unauthorized(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   "unauthorized",
		"message": "X-User-Id and X-User-Role headers are required",
	})
}

// writeError maps domain errors onto response codes: conflicts (state
// machine, capacity, duplicates) are 409, policy failures are 403,
// missing entities 404 and window/eligibility failures 422.
func (srv *Server) writeError(ctx *fiber.Ctx, err error) error {
	var transitionErr *model.InvalidTransitionError

	switch {
	case errors.As(err, &transitionErr):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "invalid_state_transition",
			"message": transitionErr.Error(),
		})
	case errors.Is(err, model.ErrCapacityExceeded):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "capacity_exceeded",
			"message": err.Error(),
		})
	case errors.Is(err, model.ErrDuplicateApplication):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "duplicate_application",
			"message": err.Error(),
		})
	case errors.Is(err, model.ErrForbidden):
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "forbidden",
			"message": err.Error(),
		})
	case errors.Is(err, model.ErrNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "not_found",
			"message": err.Error(),
		})
	case errors.Is(err, model.ErrWindowClosed):
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":   "application_window_closed",
			"message": err.Error(),
		})
	case errors.Is(err, model.ErrNotApproved):
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":   "not_approved",
			"message": err.Error(),
		})
	}

	srv.logger.Error("request failed", zap.Error(err))
	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "internal",
		"message": "internal server error",
	})
}

func badRequest(ctx *fiber.Ctx, msg string) error {
	return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "bad_request",
		"message": msg,
	})
}
