package dto

import "time"

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type AdminUserResponse struct {
	TelegramId         int64      `json:"telegram_id"`
	Username           *string    `json:"username"`
	FirstName          *string    `json:"first_name"`
	LanguageLevel      *string    `json:"language_level"`
	DiscussionsToday   int        `json:"discussions_today"`
	BonusRequests      int        `json:"bonus_requests"`
	FeedbackBonusUsed  bool       `json:"feedback_bonus_used"`
	LastDiscussionDate *time.Time `json:"last_discussion_date"`
	LastActivity       time.Time  `json:"last_activity"`
}

type AdminTurnResponse struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type AdminFeedbackResponse struct {
	Rating    string    `json:"rating"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
