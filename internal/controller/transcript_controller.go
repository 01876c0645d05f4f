package controller

import (
	"socioscope-be/internal/constant"
	"socioscope-be/internal/dto"
	"socioscope-be/internal/pkg/serverutils"
	"socioscope-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ITranscriptController interface {
	RegisterRoutes(r fiber.Router)
	Navigation(ctx *fiber.Ctx) error
	Select(ctx *fiber.Ctx) error
	Selection(ctx *fiber.Ctx) error
	Read(ctx *fiber.Ctx) error
}

type transcriptController struct {
	transcriptService service.ITranscriptService
}

func NewTranscriptController(transcriptService service.ITranscriptService) ITranscriptController {
	return &transcriptController{
		transcriptService: transcriptService,
	}
}

func (c *transcriptController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/transcript/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("navigation", c.Navigation)
	h.Post("select", c.Select)
	h.Get("selection", c.Selection)
	h.Get(":filename", c.Read)
}

func analystIDFromLocals(ctx *fiber.Ctx) (uuid.UUID, error) {
	idStr, ok := ctx.Locals("analyst_id").(string)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	return id, nil
}

func (c *transcriptController) Navigation(ctx *fiber.Ctx) error {
	analystID, err := analystIDFromLocals(ctx)
	if err != nil {
		return err
	}

	res, err := c.transcriptService.GetNavigation(ctx.Context(), analystID)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Navigation tree", res))
}

func (c *transcriptController) Select(ctx *fiber.Ctx) error {
	analystID, err := analystIDFromLocals(ctx)
	if err != nil {
		return err
	}

	var req dto.SelectRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.transcriptService.ToggleSelect(ctx.Context(), analystID, req.RecordId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Selection updated", res))
}

func (c *transcriptController) Selection(ctx *fiber.Ctx) error {
	analystID, err := analystIDFromLocals(ctx)
	if err != nil {
		return err
	}

	res, err := c.transcriptService.GetSelection(ctx.Context(), analystID)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Current selection", res))
}

func (c *transcriptController) Read(ctx *fiber.Ctx) error {
	if _, err := analystIDFromLocals(ctx); err != nil {
		return err
	}

	recordID := ctx.Params("filename")
	offset := ctx.QueryInt("offset", 0)
	limit := ctx.QueryInt("limit", constant.TranscriptPageLimit)

	res, err := c.transcriptService.ReadTranscript(ctx.Context(), recordID, offset, limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Transcript page", res))
}
