package values

type ContextKey string

// ContextTracingKey is the key under which the tracing context is stored
// on a request context.
const ContextTracingKey = ContextKey("tracing-context")

// ContextUserIDKey is the key under which the authenticated user id is
// stored on a request context.
const ContextUserIDKey = ContextKey("user-id")

const (
	HeaderRequestID     = "X-Request-Id"
	HeaderRequestSource = "X-Request-Source"
)

// Response status strings. These are mapped to HTTP status codes by
// util.StatusCode.
const (
	Success        = "success"
	Created        = "created"
	Error          = "error"
	Failed         = "failed"
	BadRequest     = "bad-request"
	BadRequestBody = "bad-request-body"
	Unprocessable  = "unprocessable"
	NotFound       = "not-found"
	NotAllowed     = "not-allowed"
	Conflict       = "conflict"
	NotAuthorised  = "not-authorised"
	TokenExpired   = "token-expired"
	ActiveLogin    = "active-login"
	Timeout        = "timeout"
	Unavailable    = "unavailable"
	SystemErr      = "system error"
	InternalError  = "internal error"
)
