package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrTokenExpired  ErrCode = "TOKEN_EXPIRED"
	ErrForbidden     ErrCode = "FORBIDDEN"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Session / wizard flow ─────────────────────────────────────────
	ErrStepInvalid       ErrCode = "SESSION_STEP_INVALID"
	ErrNoQuestions       ErrCode = "NO_QUESTIONS_PRODUCED"
	ErrAlreadySubmitted  ErrCode = "ALREADY_SUBMITTED"
	ErrNotScored         ErrCode = "NOT_SCORED"
	ErrLanguageNotNeeded ErrCode = "LANGUAGE_CHOICE_NOT_NEEDED"
	ErrUnknownQuestion   ErrCode = "UNKNOWN_QUESTION"

	// ─── Scoring ───────────────────────────────────────────────────────
	ErrAnswerKeyMismatch ErrCode = "ANSWER_KEY_MISMATCH"
	ErrAnswerKeyInvalid  ErrCode = "ANSWER_KEY_INVALID"

	// ─── Gateway ───────────────────────────────────────────────────────
	ErrGateway ErrCode = "GATEWAY_ERROR"

	// ─── Files ─────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"
	ErrFileUnreadable  ErrCode = "FILE_UNREADABLE"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."
	case ErrForbidden:
		return "You do not have access to this resource."

	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	case ErrNotFound:
		return "Resource not found."

	case ErrStepInvalid:
		return "This action is not allowed at the current step of the test."
	case ErrNoQuestions:
		return "The AI could not produce any questions from the given input. Try different content or options."
	case ErrAlreadySubmitted:
		return "This test has already been submitted."
	case ErrNotScored:
		return "The test has not been scored yet."
	case ErrLanguageNotNeeded:
		return "A language choice is not pending for this session."
	case ErrUnknownQuestion:
		return "The question does not belong to this test."

	case ErrAnswerKeyMismatch:
		return "The answer key does not match the number of questions."
	case ErrAnswerKeyInvalid:
		return "The answer key file could not be parsed."

	case ErrGateway:
		return "The AI service failed to respond. Please try again."

	case ErrFileRequired:
		return "A file upload is required."
	case ErrUnsupportedFile:
		return "Unsupported file type. Upload a PDF or plain-text file."
	case ErrFileTooLarge:
		return "The file exceeds the size limit."
	case ErrFileUnreadable:
		return "The file could not be read or parsed."

	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
