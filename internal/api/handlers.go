package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/volunhub/volunhub/pkg/core/model"
	"github.com/volunhub/volunhub/pkg/core/services"
)

type createMissionBody struct {
	Title        string    `json:"title"`
	DepartmentID string    `json:"department_id"`
	Type         string    `json:"type"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
}

func (srv *Server) createMissionHandler() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		act, ok := actor(ctx)
		if !ok {
			return unauthorized(ctx)
		}

		var body createMissionBody
		if err := ctx.BodyParser(&body); err != nil {
			return badRequest(ctx, "invalid request body")
		}

		mission, err := services.CreateMission(ctx.Context(), srv.store, srv.audit, srv.logger, act, services.CreateMissionInput{
			Title:        body.Title,
			DepartmentID: body.DepartmentID,
			Type:         body.Type,
			StartTime:    body.StartTime,
			EndTime:      body.EndTime,
		})
		if err != nil {
			return srv.writeError(ctx, err)
		}

		return ctx.Status(fiber.StatusCreated).JSON(toMissionDTO(mission))
	}
}

func (srv *Server) listMissionsHandler() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		missions, err := srv.store.ListMissions(ctx.Context())
		if err != nil {
			return srv.writeError(ctx, err)
		}

		result := make([]*missionDTO, 0, len(missions))
		for i := range missions {
			result = append(result, toMissionDTO(&missions[i]))
		}
		return ctx.JSON(result)
	}
}

func (srv *Server) getMissionHandler() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		mission, err := srv.store.GetMission(ctx.Context(), param(ctx, "id"))
		if err != nil {
			return srv.writeError(ctx, err)
		}

		shifts, err := srv.store.ListShifts(ctx.Context(), mission.ID)
		if err != nil {
			return srv.writeError(ctx, err)
		}

		shiftDTOs := make([]*shiftDTO, 0, len(shifts))
		for i := range shifts {
			shiftDTOs = append(shiftDTOs, toShiftDTO(&shifts[i]))
		}
		return ctx.JSON(fiber.Map{
			"mission": toMissionDTO(mission),
			"shifts":  shiftDTOs,
		})
	}
}

// missionTransition is the shape shared by the open and close services.
type missionTransition func(ctx context.Context, store services.MissionStore, audit services.AuditLog, logger *zap.Logger, actor model.Actor, missionID string) (*model.Mission, error)

func (srv *Server) missionTransitionHandler(transition missionTransition) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		act, ok := actor(ctx)
		if !ok {
			return unauthorized(ctx)
		}

		mission, err := transition(ctx.Context(), srv.store, srv.audit, srv.logger, act, param(ctx, "id"))
		if err != nil {
			return srv.writeError(ctx, err)
		}
		return ctx.JSON(toMissionDTO(mission))
	}
}

func (srv *Server) completeMissionHandler() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		act, ok := actor(ctx)
		if !ok {
			return unauthorized(ctx)
		}

		mission, err := services.CompleteMission(ctx.Context(), srv.store, srv.audit, srv.logger, act, param(ctx, "id"), srv.requireAttendance)
		if err != nil {
			return srv.writeError(ctx, err)
		}
		return ctx.JSON(toMissionDTO(mission))
	}
}

func (srv *Server) cancelMissionHandler() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		act, ok := actor(ctx)
		if !ok {
			return unauthorized(ctx)
		}

		result, err := services.CancelMission(ctx.Context(), srv.store, srv.notifier, srv.audit, srv.logger, act, param(ctx, "id"))
		if err != nil {
			return srv.writeError(ctx, err)
		}
		return ctx.JSON(fiber.Map{
			"mission":           toMissionDTO(result.Mission),
			"canceled_requests": len(result.CanceledRequests),
		})
	}
}

type addShiftBody struct {
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	MinVolunteers  int       `json:"min_volunteers"`
	MaxVolunteers  int       `json:"max_volunteers"`
	RequiredSkills []string  `json:"required_skill_ids"`
	Notes          string    `json:"notes"`
	RRule          string    `json:"rrule"`
}

func (srv *Server) addShiftHandler() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		act, ok := actor(ctx)
		if !ok {
			return unauthorized(ctx)
		}

		var body addShiftBody
		if err := ctx.BodyParser(&body); err != nil {
			return badRequest(ctx, "invalid request body")
		}

		input := services.ShiftInput{
			StartTime:      body.StartTime,
			EndTime:        body.EndTime,
			MinVolunteers:  body.MinVolunteers,
			MaxVolunteers:  body.MaxVolunteers,
			RequiredSkills: body.RequiredSkills,
			Notes:          body.Notes,
		}

		missionID := param(ctx, "id")

		if body.RRule != "" {
			result, err := services.AddRecurringShifts(ctx.Context(), srv.store, srv.audit, srv.logger, act, missionID, input, body.RRule)
			if err != nil {
				return srv.writeError(ctx, err)
			}
			dtos := make([]*shiftDTO, 0, len(result.Shifts))
			for _, s := range result.Shifts {
				dtos = append(dtos, toShiftDTO(s))
			}
			return ctx.Status(fiber.StatusCreated).JSON(dtos)
		}

		shift, err := services.AddShift(ctx.Context(), srv.store, srv.audit, srv.logger, act, missionID, input)
		if err != nil {
			return srv.writeError(ctx, err)
		}
		return ctx.Status(fiber.StatusCreated).JSON(toShiftDTO(shift))
	}
}

func (srv *Server) deleteShiftHandler() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		act, ok := actor(ctx)
		if !ok {
			return unauthorized(ctx)
		}

		result, err := services.DeleteShift(ctx.Context(), srv.store, srv.notifier, srv.audit, srv.logger, act, param(ctx, "id"))
		if err != nil {
			return srv.writeError(ctx, err)
		}
		return ctx.JSON(fiber.Map{
			"shift_id":          result.ShiftID,
			"canceled_requests": len(result.CanceledRequests),
		})
	}
}

type applyBody struct {
	Notes string `json:"notes"`
}

func (srv *Server) applyHandler() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		act, ok := actor(ctx)
		if !ok {
			return unauthorized(ctx)
		}

		var body applyBody
		if len(ctx.Body()) > 0 {
			if err := ctx.BodyParser(&body); err != nil {
				return badRequest(ctx, "invalid request body")
			}
		}

		req, err := services.Apply(ctx.Context(), srv.store, srv.audit, srv.logger, act, param(ctx, "id"), body.Notes)
		if err != nil {
			return srv.writeError(ctx, err)
		}
		return ctx.Status(fiber.StatusCreated).JSON(toRequestDTO(req))
	}
}

type addVolunteerBody struct {
	VolunteerID string `json:"volunteer_id"`
}

func (srv *Server) addVolunteerHandler() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		act, ok := actor(ctx)
		if !ok {
			return unauthorized(ctx)
		}

		var body addVolunteerBody
		if err := ctx.BodyParser(&body); err != nil || body.VolunteerID == "" {
			return badRequest(ctx, "volunteer_id is required")
		}

		req, err := services.AddVolunteer(ctx.Context(), srv.store, srv.notifier, srv.audit, srv.logger, act, param(ctx, "id"), body.VolunteerID)
		if err != nil {
			return srv.writeError(ctx, err)
		}
		return ctx.Status(fiber.StatusCreated).JSON(toRequestDTO(req))
	}
}

func (srv *Server) approveHandler() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		act, ok := actor(ctx)
		if !ok {
			return unauthorized(ctx)
		}

		req, err := services.Approve(ctx.Context(), srv.store, srv.notifier, srv.audit, srv.logger, act, param(ctx, "id"))
		if err != nil {
			return srv.writeError(ctx, err)
		}
		return ctx.JSON(toRequestDTO(req))
	}
}

type rejectBody struct {
	Reason string `json:"reason"`
}

func (srv *Server) rejectHandler() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		act, ok := actor(ctx)
		if !ok {
			return unauthorized(ctx)
		}

		var body rejectBody
		if len(ctx.Body()) > 0 {
			if err := ctx.BodyParser(&body); err != nil {
				return badRequest(ctx, "invalid request body")
			}
		}

		req, err := services.Reject(ctx.Context(), srv.store, srv.notifier, srv.audit, srv.logger, act, param(ctx, "id"), body.Reason)
		if err != nil {
			return srv.writeError(ctx, err)
		}
		return ctx.JSON(toRequestDTO(req))
	}
}

func (srv *Server) cancelRequestHandler() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		act, ok := actor(ctx)
		if !ok {
			return unauthorized(ctx)
		}

		req, err := services.CancelRequest(ctx.Context(), srv.store, srv.notifier, srv.audit, srv.logger, act, param(ctx, "id"))
		if err != nil {
			return srv.writeError(ctx, err)
		}
		return ctx.JSON(toRequestDTO(req))
	}
}

type attendanceBody struct {
	Hours *float64 `json:"hours"`
}

func (srv *Server) markAttendedHandler() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		act, ok := actor(ctx)
		if !ok {
			return unauthorized(ctx)
		}

		var body attendanceBody
		if len(ctx.Body()) > 0 {
			if err := ctx.BodyParser(&body); err != nil {
				return badRequest(ctx, "invalid request body")
			}
		}

		result, err := services.MarkAttended(ctx.Context(), srv.store, srv.calc, srv.audit, srv.logger, act, param(ctx, "id"), body.Hours)
		if err != nil {
			return srv.writeError(ctx, err)
		}
		return ctx.JSON(&attendanceDTO{
			Request:        toRequestDTO(result.Request),
			EffectiveHours: result.EffectiveHours,
			Points:         result.Points,
			Delta:          result.Delta,
		})
	}
}

func (srv *Server) retractAttendanceHandler() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		act, ok := actor(ctx)
		if !ok {
			return unauthorized(ctx)
		}

		result, err := services.RetractAttendance(ctx.Context(), srv.store, srv.audit, srv.logger, act, param(ctx, "id"))
		if err != nil {
			return srv.writeError(ctx, err)
		}
		return ctx.JSON(&attendanceDTO{
			Request: toRequestDTO(result.Request),
			Delta:   result.Delta,
		})
	}
}

func (srv *Server) userPointsHandler() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user, err := srv.store.GetUser(ctx.Context(), param(ctx, "id"))
		if err != nil {
			return srv.writeError(ctx, err)
		}

		entries, err := srv.store.UserLedger(ctx.Context(), user.ID)
		if err != nil {
			return srv.writeError(ctx, err)
		}
		return ctx.JSON(toUserPointsDTO(user, entries))
	}
}
