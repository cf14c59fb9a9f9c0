package routes

var (
	RegisterDurationSecondsBuckets = []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	LoginDurationSecondsBuckets    = []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10}
)

const (
	// API route patterns (method-qualified net/http ServeMux syntax)
	RegisterRouteAPI = "POST /api/users"
	LoginRouteAPI    = "POST /api/users/login"
	ListRouteAPI     = "GET /api/users"
	DeleteRouteAPI   = "DELETE /api/users/{username}"
	UpdateRouteAPI   = "PUT /api/users/{username}"
	HealthRouteAPI   = "GET /healthz"
	MetricsRouteAPI  = "/metrics"

	// PathValue key for the username segment
	UsernamePathParam = "username"

	// Content-Type constants
	ContentType     = "Content-Type"
	ContentTypeJson = "application/json"

	// Session cookie set on successful login
	SessionCookieName = "session_token"

	// Error messages
	ErrInvalidContentType     = "Request Content-Type must be application/json"
	ErrInvalidRequestBody     = "Invalid request body"
	ErrValidationFailed       = "username and password are required"
	ErrDuplicateUsername      = "username already exists"
	ErrInvalidCredentials     = "username or password is wrong"
	ErrAccountNotFound        = "account not found"
	ErrInternal               = "internal server error"
	ErrFailedToEncodeResponse = "Failed to encode response"
	ErrFailedToGenerateToken  = "Failed to generate session token"

	// metrics constants
	RegisterRequestsTotal       = "register_requests_total"
	RegisterRequestsTotalHelp   = "Total number of register requests received"
	RegisterSuccessTotal        = "register_success_total"
	RegisterSuccessTotalHelp    = "Total number of successful register requests"
	RegisterErrorsTotal         = "register_errors_total"
	RegisterErrorsTotalHelp     = "Total number of errors during register requests"
	RegisterDurationSeconds     = "register_duration_seconds"
	RegisterDurationSecondsHelp = "Duration of register requests in seconds"

	LoginRequestsTotal       = "login_requests_total"
	LoginRequestsTotalHelp   = "Total number of login requests received"
	LoginSuccessTotal        = "login_success_total"
	LoginSuccessTotalHelp    = "Total number of successful login requests"
	LoginFailedTotal         = "login_failed_total"
	LoginFailedTotalHelp     = "Total number of failed login requests"
	LoginDurationSeconds     = "login_duration_seconds"
	LoginDurationSecondsHelp = "Duration of login requests in seconds"

	ListRequestsTotal     = "list_requests_total"
	ListRequestsTotalHelp = "Total number of profile list requests received"
	ListErrorsTotal       = "list_errors_total"
	ListErrorsTotalHelp   = "Total number of errors during profile list requests"

	DeleteRequestsTotal     = "delete_requests_total"
	DeleteRequestsTotalHelp = "Total number of account delete requests received"
	DeleteErrorsTotal       = "delete_errors_total"
	DeleteErrorsTotalHelp   = "Total number of errors during account delete requests"

	UpdateRequestsTotal     = "update_requests_total"
	UpdateRequestsTotalHelp = "Total number of account update requests received"
	UpdateErrorsTotal       = "update_errors_total"
	UpdateErrorsTotalHelp   = "Total number of errors during account update requests"
)
