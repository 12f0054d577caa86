package dto

// UserRef identifies the end user on every discussion endpoint. The profile
// fields are optional and only used when the user is first seen.
type UserRef struct {
	TelegramId int64  `json:"telegram_id" validate:"required"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
}

type SetLevelRequest struct {
	UserRef
	Level string `json:"level" validate:"required"`
}

type StartDiscussionRequest struct {
	UserRef
}

type MessageRequest struct {
	UserRef
	Text string `json:"text" validate:"required"`
}

type StopDiscussionRequest struct {
	UserRef
}

type FeedbackRequest struct {
	UserRef
	Rating  string  `json:"rating" validate:"required"`
	Comment *string `json:"comment"`
}

type MessageResponse struct {
	Reply string `json:"reply"`
}

type StopDiscussionResponse struct {
	Ended bool `json:"ended"`
}

type FeedbackResponse struct {
	BonusGranted bool `json:"bonus_granted"`
}
