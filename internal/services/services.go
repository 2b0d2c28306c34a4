package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmlee/todoflow/internal/aiparse"
	"github.com/dmlee/todoflow/internal/analytics"
	"github.com/dmlee/todoflow/internal/models"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrUserPasswordMismatch = errors.New("user password mismatch")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionExpired       = errors.New("session expired")

	ErrTodoNotFound      = errors.New("todo not found")
	ErrInvalidPriority   = errors.New("invalid priority")
	ErrInvalidRepeatType = errors.New("invalid repeat type")
)

// AI failure categories; each maps to its own HTTP status and
// user-facing message in the delivery layer.
var (
	ErrAINotConfigured  = errors.New("OPENAI_API_KEY 환경변수가 설정되지 않았습니다.")
	ErrAIUnauthorized   = errors.New("AI API 키가 유효하지 않습니다. 환경변수를 확인해주세요.")
	ErrAIRateLimited    = errors.New("AI 서비스 사용 한도가 초과되었습니다. 잠시 후 다시 시도해주세요.")
	ErrAIBadRequest     = errors.New("AI 분석 중 오류가 발생했습니다. 다시 시도해주세요.")
	ErrAIEmptyReply     = errors.New("AI가 응답을 생성하지 못했습니다.")
	ErrAIMalformedReply = errors.New("AI 응답 형식이 올바르지 않습니다.")
	ErrAIUnavailable    = errors.New("AI 처리 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요.")
)

type AuthService interface {
	// Login authenticates the user by email and password.
	//
	// It deletes all sessions with the same user ID and creates
	// a new session and generates a new JWT token pair.
	//
	// It returns ErrUserNotFound if the user with the given
	// email doesn't exist or ErrUserPasswordMismatch if the
	// given password doesn't match the user's password.
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Refresh updates the session with the given refresh token.
	//
	// It returns ErrSessionNotFound if the session with the
	// given refresh token doesn't exist or ErrSessionExpired
	// if the session is expired.
	Refresh(ctx context.Context, params RefreshParams) (*LoginResult, error)

	// Register a user with the given email and password.
	//
	// It hashes the password, generates a unique ID and creates a
	// session with the given fingerprint and a fresh JWT token pair.
	//
	// It returns ErrUserAlreadyExists if the user
	// with the given email already exists.
	Register(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Logout invalidates all sessions with the given user ID.
	Logout(ctx context.Context, userID string) error

	// ParseJWTToken parses the given JWT token and returns the registered
	// claims or jwt.ErrTokenExpired if the token is expired.
	ParseJWTToken(token string) (*jwt.RegisteredClaims, error)
}

type SessionService interface {
	GetSessionByID(ctx context.Context, sessionID string) (*models.Session, error)
}

type TodoService interface {
	// CreateTodo inserts the todo and, when it carries a recurrence
	// rule, expands it into future instances. Expansion is
	// best-effort: its failure never fails the creation.
	CreateTodo(ctx context.Context, params CreateTodoParams) (*models.Todo, error)

	// GetTodosByUserID lists the user's todos, highest priority
	// first, then by manual position within each tier.
	GetTodosByUserID(ctx context.Context, userID string) ([]*models.Todo, error)

	// UpdateTodo edits the todo's fields and re-expands its
	// recurrence rule when one is (re)enabled.
	UpdateTodo(ctx context.Context, params UpdateTodoParams) (*models.Todo, error)

	// SetTodoCompleted toggles completion.
	SetTodoCompleted(ctx context.Context, params SetTodoCompletedParams) (*models.Todo, error)

	// ReorderTodos rewrites manual positions per priority tier from
	// the given id order. Persistence problems, including a backing
	// table without the position column, are logged no-ops: the
	// client's optimistic order stands either way.
	ReorderTodos(ctx context.Context, userID string, orderedIDs []string) error

	// DeleteTodo removes the todo. Already-generated recurrence
	// children are left in place.
	DeleteTodo(ctx context.Context, id, userID string) error
}

type SummaryService interface {
	// Summarize analyzes the todo collection and returns a summary
	// that is always well-formed: model-reply problems are repaired
	// into a deterministic fallback, only call-level failures (one
	// of the ErrAI* categories) surface as errors.
	Summarize(ctx context.Context, todos []analytics.TodoInput, period analytics.Period) (*analytics.Summary, error)

	// ParseTodo converts preprocessed natural-language text into
	// normalized todo creation payloads.
	ParseTodo(ctx context.Context, text string) ([]aiparse.NormalizedTodo, error)
}

type LoginParams struct {
	Email       string
	Password    string
	Fingerprint string
}

type LoginResult struct {
	UserID                string
	SessionID             string
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

type RefreshParams struct {
	RefreshToken string
	Fingerprint  string
}

type CreateTodoParams struct {
	UserID      string
	Title       string
	Description string
	Priority    string
	Category    string
	Completed   bool
	DueDate     *time.Time

	RepeatType       string
	RepeatInterval   int
	RepeatDaysOfWeek []int
	RepeatEndDate    *time.Time
	ParentTodoID     *string
}

type UpdateTodoParams struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Priority    string
	Category    string
	Completed   bool
	DueDate     *time.Time

	RepeatType       string
	RepeatInterval   int
	RepeatDaysOfWeek []int
	RepeatEndDate    *time.Time
}

type SetTodoCompletedParams struct {
	ID        string
	UserID    string
	Completed bool
}
