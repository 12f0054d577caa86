package controller

import (
	"strconv"
	"time"

	"language-mirror-be/internal/config"
	"language-mirror-be/internal/dto"
	"language-mirror-be/internal/pkg/logger"
	"language-mirror-be/internal/pkg/serverutils"
	"language-mirror-be/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AdminController struct {
	cfg       config.AdminConfig
	session   service.ISessionService
	quota     service.IQuotaService
	stats     service.IStatsService
	zapLogger *logger.ZapLogger
	validator *validator.Validate
}

func NewAdminController(cfg config.AdminConfig, session service.ISessionService, quota service.IQuotaService, stats service.IStatsService, zapLogger *logger.ZapLogger) *AdminController {
	return &AdminController{
		cfg:       cfg,
		session:   session,
		quota:     quota,
		stats:     stats,
		zapLogger: zapLogger,
		validator: validator.New(),
	}
}

// Login checks the configured dashboard credentials and issues a 24h JWT.
// ADMIN_PASSWORD holds a bcrypt hash, never the plaintext.
func (c *AdminController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := c.validator.Struct(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	if req.Email != c.cfg.Email ||
		bcrypt.CompareHashAndPassword([]byte(c.cfg.Password), []byte(req.Password)) != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "Invalid credentials"))
	}

	claims := jwt.MapClaims{
		"sub": req.Email,
		"exp": time.Now().Add(24 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.cfg.JWTSecret))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, "Failed to sign token"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Login successful", dto.LoginResponse{Token: token}))
}

func (c *AdminController) ListUsers(ctx *fiber.Ctx) error {
	users, err := c.session.Adapter().ListUsers(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, "Failed to list users"))
	}

	out := make([]dto.AdminUserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, dto.AdminUserResponse{
			TelegramId:         u.TelegramId,
			Username:           u.Username,
			FirstName:          u.FirstName,
			LanguageLevel:      u.LanguageLevel,
			DiscussionsToday:   u.DiscussionsToday,
			BonusRequests:      u.BonusRequests,
			FeedbackBonusUsed:  u.FeedbackBonusUsed,
			LastDiscussionDate: u.LastDiscussionDate,
			LastActivity:       u.LastActivity,
		})
	}
	return ctx.JSON(serverutils.SuccessResponse("Users retrieved", out))
}

func (c *AdminController) ListFeedback(ctx *fiber.Ctx) error {
	feedback, err := c.session.Adapter().ListFeedback(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, "Failed to list feedback"))
	}

	out := make([]dto.AdminFeedbackResponse, 0, len(feedback))
	for _, f := range feedback {
		out = append(out, dto.AdminFeedbackResponse{
			Rating:    f.Rating,
			Comment:   f.Comment,
			CreatedAt: f.CreatedAt,
		})
	}
	return ctx.JSON(serverutils.SuccessResponse("Feedback retrieved", out))
}

func (c *AdminController) SessionTurns(ctx *fiber.Ctx) error {
	sessionId, err := uuid.Parse(ctx.Params("session_id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid session id"))
	}

	turns, err := c.session.Adapter().ListTurns(ctx.UserContext(), sessionId)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, "Failed to list turns"))
	}

	out := make([]dto.AdminTurnResponse, 0, len(turns))
	for _, turn := range turns {
		out = append(out, dto.AdminTurnResponse{
			Role:      turn.Role,
			Content:   turn.Content,
			CreatedAt: turn.CreatedAt,
		})
	}
	return ctx.JSON(serverutils.SuccessResponse("Transcript retrieved", out))
}

func (c *AdminController) Stats(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Stats retrieved", c.stats.Snapshot()))
}

func (c *AdminController) Logs(ctx *fiber.Ctx) error {
	level := ctx.Query("level", "")
	limit := ctx.QueryInt("limit", 100)
	offset := ctx.QueryInt("offset", 0)

	entries, err := c.zapLogger.GetLogs(level, limit, offset)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, "Failed to read logs"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Logs retrieved", entries))
}

func (c *AdminController) ResetBonusFlag(ctx *fiber.Ctx) error {
	telegramId, err := strconv.ParseInt(ctx.Params("telegram_id"), 10, 64)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid telegram id"))
	}

	if err := c.quota.ResetBonusFlag(ctx.UserContext(), telegramId); err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "User not found"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Bonus flag reset", nil))
}
