package controller

import (
	"errors"

	"language-mirror-be/internal/dto"
	"language-mirror-be/internal/pkg/serverutils"
	"language-mirror-be/internal/repository/contract"
	"language-mirror-be/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type DiscussionController struct {
	discussion service.IDiscussionService
	validator  *validator.Validate
}

func NewDiscussionController(discussion service.IDiscussionService) *DiscussionController {
	return &DiscussionController{
		discussion: discussion,
		validator:  validator.New(),
	}
}

func (c *DiscussionController) parse(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := c.validator.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}
	return nil
}

func profileOf(ref dto.UserRef) contract.NewUserProfile {
	return contract.NewUserProfile{
		Username:  ref.Username,
		FirstName: ref.FirstName,
		LastName:  ref.LastName,
	}
}

func (c *DiscussionController) SetLevel(ctx *fiber.Ctx) error {
	var req dto.SetLevelRequest
	if err := c.parse(ctx, &req); err != nil {
		return err
	}

	err := c.discussion.SetLanguageLevel(ctx.UserContext(), req.TelegramId, profileOf(req.UserRef), req.Level)
	if errors.Is(err, service.ErrInvalidLevel) {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Unknown language level"))
	}
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, "Failed to set language level"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Language level updated", nil))
}

func (c *DiscussionController) Start(ctx *fiber.Ctx) error {
	var req dto.StartDiscussionRequest
	if err := c.parse(ctx, &req); err != nil {
		return err
	}

	start, err := c.discussion.StartDiscussion(ctx.UserContext(), req.TelegramId, profileOf(req.UserRef))
	switch {
	case errors.Is(err, service.ErrLevelNotSet):
		return ctx.Status(fiber.StatusConflict).JSON(serverutils.ErrorResponse(409, "Language level not set"))
	case errors.Is(err, service.ErrQuotaExhausted):
		return ctx.Status(fiber.StatusTooManyRequests).JSON(serverutils.ErrorResponse(429, "Daily discussion limit reached"))
	case err != nil:
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, "Failed to start discussion"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Discussion started", start))
}

func (c *DiscussionController) Message(ctx *fiber.Ctx) error {
	var req dto.MessageRequest
	if err := c.parse(ctx, &req); err != nil {
		return err
	}

	reply, err := c.discussion.HandleMessage(ctx.UserContext(), req.TelegramId, req.Text)
	if errors.Is(err, service.ErrNoActiveSession) {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "No active discussion"))
	}
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, "Failed to handle message"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Reply generated", dto.MessageResponse{Reply: reply}))
}

func (c *DiscussionController) Stop(ctx *fiber.Ctx) error {
	var req dto.StopDiscussionRequest
	if err := c.parse(ctx, &req); err != nil {
		return err
	}

	ended := c.discussion.StopDiscussion(ctx.UserContext(), req.TelegramId)
	return ctx.JSON(serverutils.SuccessResponse("Discussion stopped", dto.StopDiscussionResponse{Ended: ended}))
}

func (c *DiscussionController) Feedback(ctx *fiber.Ctx) error {
	var req dto.FeedbackRequest
	if err := c.parse(ctx, &req); err != nil {
		return err
	}

	granted, err := c.discussion.SubmitFeedback(ctx.UserContext(), req.TelegramId, profileOf(req.UserRef), req.Rating, req.Comment)
	if errors.Is(err, service.ErrInvalidRating) {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Unknown feedback rating"))
	}
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, "Failed to record feedback"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Feedback recorded", dto.FeedbackResponse{BonusGranted: granted}))
}
