package constant

// Turn roles stored on messages and sent to the completion provider.
const (
	TurnRoleUser      = "user"
	TurnRoleAssistant = "assistant"
)

// Feedback ratings. The transport maps button presses onto these values.
const (
	FeedbackRatingHelpful    = "helpful"
	FeedbackRatingOkay       = "okay"
	FeedbackRatingNotHelpful = "not_helpful"
)

// ValidRatings is used by the feedback intake to reject unknown values.
var ValidRatings = map[string]bool{
	FeedbackRatingHelpful:    true,
	FeedbackRatingOkay:       true,
	FeedbackRatingNotHelpful: true,
}

// Session payload keys shared between the store and the discussion flow.
const (
	PayloadKeyLanguageLevel = "language_level"
	PayloadKeyTopic         = "topic"
	PayloadKeyState         = "state"
)

// Discussion states kept in the session payload.
const (
	StateAwaitingTopic = "awaiting_topic"
	StateChatting      = "chatting"
	StateFeedback      = "awaiting_feedback"
)

// LanguageLevelOrder lists CEFR tiers from beginner to proficiency.
var LanguageLevelOrder = []string{"A1", "A2", "B1", "B2", "C1", "C2"}

// LanguageLevels maps each tier to the description shown to users.
var LanguageLevels = map[string]string{
	"A1": "Beginner - You're just starting with English",
	"A2": "Elementary - You can use simple phrases and sentences",
	"B1": "Intermediate - You can discuss familiar topics",
	"B2": "Upper Intermediate - You can interact with fluency",
	"C1": "Advanced - You can express yourself fluently and spontaneously",
	"C2": "Proficiency - You can understand virtually everything heard or read",
}

// IsValidLevel reports whether the given tier is a known CEFR level.
func IsValidLevel(level string) bool {
	_, ok := LanguageLevels[level]
	return ok
}

// ConversationTopics holds per-level topic suggestions offered when a new
// discussion starts.
var ConversationTopics = map[string][]string{
	"A1": {
		"What is your name?",
		"Where are you from?",
		"What do you like to eat?",
		"What color do you like?",
		"How old are you?",
	},
	"A2": {
		"What is your favorite hobby?",
		"Tell me about your family.",
		"What's the weather like today?",
		"What did you do yesterday?",
		"What kind of movies do you like?",
	},
	"B1": {
		"What are your plans for the weekend?",
		"Tell me about an interesting experience you had.",
		"What kind of music do you enjoy listening to?",
		"If you could travel anywhere, where would you go?",
		"What do you think about social media?",
	},
	"B2": {
		"What are some environmental issues that concern you?",
		"How has technology changed the way we live?",
		"What are the advantages and disadvantages of working from home?",
		"Do you think artificial intelligence will change our future?",
		"What cultural differences have you noticed between countries?",
	},
	"C1": {
		"How do you think education systems could be improved?",
		"What ethical considerations should be made when developing new technologies?",
		"How does media influence public opinion?",
		"What societal changes do you think will happen in the next decade?",
		"What are your thoughts on the work-life balance in modern society?",
	},
	"C2": {
		"What philosophical questions do you find most intriguing?",
		"How do economic policies influence social inequality?",
		"In what ways might quantum computing revolutionize our approach to complex problems?",
		"How does language shape our perception of reality?",
		"What insights can literature offer us about human nature?",
	},
}

// SystemPromptTemplate is the instruction block sent to the completion
// provider; the single %s placeholders receive the user's CEFR level.
const SystemPromptTemplate = "You are Language Mirror, an AI language learning assistant focused on helping users express " +
	"their thoughts in English naturally. You're talking with a %s level English speaker. " +
	"Your goal is to help them become fluent through emotionally alive, idiomatic conversation.\n\n" +
	"Guidelines:\n" +
	"1. Use natural, idiomatic language appropriate for %s level\n" +
	"2. Introduce vocabulary and expressions gradually in context, not as lists\n" +
	"3. Help with grammar through function, not abstract rules\n" +
	"4. If the user uses words in a different language, suggest English equivalents\n" +
	"5. Maintain dialogue flow, ask questions, and respond to emotions\n" +
	"6. Don't overwhelm with vocabulary or corrections\n" +
	"7. Teach through conversation, not lectures"
