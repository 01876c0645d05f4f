package controller

import (
	"errors"

	"socioscope-be/internal/dto"
	"socioscope-be/internal/pkg/serverutils"
	"socioscope-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDiscussionController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	Map(ctx *fiber.Ctx) error
	Reduce(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Clear(ctx *fiber.Ctx) error
}

type discussionController struct {
	discussionService service.IDiscussionService
}

func NewDiscussionController(discussionService service.IDiscussionService) IDiscussionController {
	return &discussionController{
		discussionService: discussionService,
	}
}

func (c *discussionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/discussion/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("ask", c.Ask)
	h.Post("map", c.Map)
	h.Post("reduce", c.Reduce)
	h.Get("session/:id", c.History)
	h.Delete("session/:id", c.Clear)
}

func (c *discussionController) Ask(ctx *fiber.Ctx) error {
	analystID, err := analystIDFromLocals(ctx)
	if err != nil {
		return err
	}

	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if req.Question == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Question is required"))
	}

	res, err := c.discussionService.Ask(ctx.Context(), analystID, &req)
	if err != nil {
		if errors.Is(err, service.ErrSessionForbidden) {
			return ctx.Status(fiber.StatusForbidden).JSON(serverutils.ErrorResponse(403, err.Error()))
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Query completed", res))
}

func (c *discussionController) Map(ctx *fiber.Ctx) error {
	analystID, err := analystIDFromLocals(ctx)
	if err != nil {
		return err
	}

	var req dto.MapRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.discussionService.MapOne(ctx.Context(), analystID, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Map completed", res))
}

func (c *discussionController) Reduce(ctx *fiber.Ctx) error {
	if _, err := analystIDFromLocals(ctx); err != nil {
		return err
	}

	var req dto.ReduceRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.discussionService.Reduce(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Reduce completed", res))
}

func (c *discussionController) History(ctx *fiber.Ctx) error {
	analystID, err := analystIDFromLocals(ctx)
	if err != nil {
		return err
	}

	sessionID, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid session ID"))
	}

	res, err := c.discussionService.GetHistory(ctx.Context(), analystID, sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionForbidden) {
			return ctx.Status(fiber.StatusForbidden).JSON(serverutils.ErrorResponse(403, err.Error()))
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Session history", res))
}

func (c *discussionController) Clear(ctx *fiber.Ctx) error {
	analystID, err := analystIDFromLocals(ctx)
	if err != nil {
		return err
	}

	sessionID, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid session ID"))
	}

	if err := c.discussionService.ClearSession(ctx.Context(), analystID, sessionID); err != nil {
		if errors.Is(err, service.ErrSessionForbidden) {
			return ctx.Status(fiber.StatusForbidden).JSON(serverutils.ErrorResponse(403, err.Error()))
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Discussion cleared", nil))
}
