package serverutils

import (
	"errors"

	"socioscope-be/internal/constant"
	"socioscope-be/pkg/rag"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps errors bubbling out of handlers onto the
// response envelope. Query pipeline failures carry distinct messages so the
// UI can tell user error (empty selection) apart from backend error.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(fiber.StatusBadRequest, validationErrs.Error()))
		}

		if errors.Is(err, rag.ErrSelectionEmpty) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(fiber.StatusBadRequest, constant.MsgSelectionEmpty))
		}

		var notFound *rag.NotFoundError
		if errors.As(err, &notFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(fiber.StatusNotFound, constant.MsgTranscriptNotFound))
		}

		var unavailable *rag.ContentUnavailableError
		if errors.As(err, &unavailable) {
			return ctx.Status(fiber.StatusBadGateway).JSON(ErrorResponse(fiber.StatusBadGateway, constant.MsgContentUnavailable))
		}

		var allFailed *rag.AllMapsFailedError
		if errors.As(err, &allFailed) {
			return ctx.Status(fiber.StatusBadGateway).JSON(ErrorResponse(fiber.StatusBadGateway, constant.MsgAllMapsFailed))
		}

		var reduceErr *rag.ReduceError
		if errors.As(err, &reduceErr) {
			return ctx.Status(fiber.StatusBadGateway).JSON(ErrorResponse(fiber.StatusBadGateway, constant.MsgReduceFailed))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, err.Error()))
	}
}
