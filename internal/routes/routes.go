package routes

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pitboss/accounts/internal/accountservice"
	"github.com/pitboss/accounts/internal/auth"
	"github.com/pitboss/accounts/internal/interfaces"
	"github.com/pitboss/accounts/internal/models/dto"

	structValidator "github.com/go-playground/validator/v10"
)

// Route holds the handlers for the account HTTP surface. Request bodies are
// validated before any store access; store outcomes translate to status
// codes here and nowhere else.
type Route struct {
	Metrics        interfaces.Metrics
	AccountService interfaces.AccountService
	PrivateKey     *ecdsa.PrivateKey
	DBClient       interfaces.DBClient
	validator      *structValidator.Validate
}

// NewRoute creates a new Route instance.
func NewRoute(metrics interfaces.Metrics, accountService interfaces.AccountService,
	privateKey *ecdsa.PrivateKey, dbClient interfaces.DBClient, validator *structValidator.Validate,
) *Route {

	return &Route{
		Metrics:        metrics,
		AccountService: accountService,
		PrivateKey:     privateKey,
		DBClient:       dbClient,
		validator:      validator,
	}
}

// Register handles POST /api/users: create the credential/profile pair.
func (r *Route) Register(w http.ResponseWriter, req *http.Request) {
	if r.Metrics != nil {
		r.Metrics.IncCounter(RegisterRequestsTotal)
	}

	if req.Header.Get(ContentType) != ContentTypeJson {
		w.WriteHeader(http.StatusBadRequest)
		r.errorResponse(w, fmt.Errorf("invalid content-type: %s", req.Header.Get(ContentType)), ErrInvalidContentType)
		if r.Metrics != nil {
			r.Metrics.IncCounter(RegisterErrorsTotal)
		}
		return
	}

	registerRequest := &dto.RegisterRequestDTO{}
	if err := json.NewDecoder(req.Body).Decode(registerRequest); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		r.errorResponse(w, err, ErrInvalidRequestBody)
		if r.Metrics != nil {
			r.Metrics.IncCounter(RegisterErrorsTotal)
		}
		return
	}

	if err := r.validator.Struct(registerRequest); err != nil {
		errs := err.(structValidator.ValidationErrors)
		w.WriteHeader(http.StatusBadRequest)
		r.errorResponse(w, fmt.Errorf("invalid register data: %s", errs), ErrValidationFailed)
		if r.Metrics != nil {
			r.Metrics.IncCounter(RegisterErrorsTotal)
		}
		return
	}

	var startTime time.Time
	if r.Metrics != nil {
		startTime = time.Now()
	}

	cred, profile, err := r.AccountService.Register(req.Context(), registerRequest.Username, registerRequest.Password)
	if err != nil {
		// Duplicate usernames are a 403 on this API, matching login failures.
		if errors.Is(err, accountservice.ErrUsernameTaken) {
			w.WriteHeader(http.StatusForbidden)
			r.errorResponse(w, accountservice.ErrUsernameTaken, ErrDuplicateUsername)
		} else {
			w.WriteHeader(http.StatusInternalServerError)
			r.errorResponse(w, errors.New(ErrInternal), ErrInternal)
		}
		if r.Metrics != nil {
			r.Metrics.IncCounter(RegisterErrorsTotal)
		}
		return
	}

	if r.Metrics != nil {
		r.Metrics.IncCounter(RegisterSuccessTotal)
		duration := time.Since(startTime).Seconds()
		r.Metrics.ObserveHistogram(RegisterDurationSeconds, duration)
	}

	w.Header().Set(ContentType, ContentTypeJson)
	w.WriteHeader(http.StatusOK)

	response := &dto.RegisterResponseDTO{
		User:    dto.NewCredentialDTO(cred),
		Profile: dto.NewProfileDTO(profile),
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		r.errorResponse(w, err, ErrFailedToEncodeResponse)
		if r.Metrics != nil {
			r.Metrics.IncCounter(RegisterErrorsTotal)
		}
		return
	}
}

// Login handles POST /api/users/login: verify the credential and set a
// session cookie. An unknown user and a wrong password produce identical
// responses so account existence cannot be probed.
func (r *Route) Login(w http.ResponseWriter, req *http.Request) {
	if r.Metrics != nil {
		r.Metrics.IncCounter(LoginRequestsTotal)
	}

	if req.Header.Get(ContentType) != ContentTypeJson {
		w.WriteHeader(http.StatusBadRequest)
		r.errorResponse(w, fmt.Errorf("invalid content-type: %s", req.Header.Get(ContentType)), ErrInvalidContentType)
		if r.Metrics != nil {
			r.Metrics.IncCounter(LoginFailedTotal)
		}
		return
	}

	loginRequest := &dto.LoginRequestDTO{}
	if err := json.NewDecoder(req.Body).Decode(loginRequest); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		r.errorResponse(w, err, ErrInvalidRequestBody)
		if r.Metrics != nil {
			r.Metrics.IncCounter(LoginFailedTotal)
		}
		return
	}

	if err := r.validator.Struct(loginRequest); err != nil {
		errs := err.(structValidator.ValidationErrors)
		w.WriteHeader(http.StatusBadRequest)
		r.errorResponse(w, fmt.Errorf("invalid login data: %s", errs), ErrValidationFailed)
		if r.Metrics != nil {
			r.Metrics.IncCounter(LoginFailedTotal)
		}
		return
	}

	var startTime time.Time
	if r.Metrics != nil {
		startTime = time.Now()
	}

	cred, err := r.AccountService.Authenticate(req.Context(), loginRequest.Username, loginRequest.Password)
	if err != nil {
		w.Header().Set(ContentType, ContentTypeJson)
		if errors.Is(err, accountservice.ErrInvalidCredentials) {
			w.WriteHeader(http.StatusForbidden)
			r.errorResponse(w, accountservice.ErrInvalidCredentials, ErrInvalidCredentials)
		} else {
			w.WriteHeader(http.StatusInternalServerError)
			r.errorResponse(w, errors.New(ErrInternal), ErrInternal)
		}
		if r.Metrics != nil {
			r.Metrics.IncCounter(LoginFailedTotal)
			duration := time.Since(startTime).Seconds()
			r.Metrics.ObserveHistogram(LoginDurationSeconds, duration)
		}
		return
	}

	if r.Metrics != nil {
		r.Metrics.IncCounter(LoginSuccessTotal)
		duration := time.Since(startTime).Seconds()
		r.Metrics.ObserveHistogram(LoginDurationSeconds, duration)
	}

	sessionToken, err := auth.CreateToken(cred.Username, r.PrivateKey)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		r.errorResponse(w, errors.New(ErrInternal), ErrFailedToGenerateToken)
		if r.Metrics != nil {
			r.Metrics.IncCounter(LoginFailedTotal)
		}
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
	})

	w.Header().Set(ContentType, ContentTypeJson)
	w.WriteHeader(http.StatusOK)

	response := &dto.LoginResponseDTO{
		User: dto.NewCredentialDTO(cred),
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		r.errorResponse(w, err, ErrFailedToEncodeResponse)
		if r.Metrics != nil {
			r.Metrics.IncCounter(LoginFailedTotal)
		}
		return
	}
}

// List handles GET /api/users: every profile, unordered.
func (r *Route) List(w http.ResponseWriter, req *http.Request) {
	if r.Metrics != nil {
		r.Metrics.IncCounter(ListRequestsTotal)
	}

	profiles, err := r.AccountService.ListProfiles(req.Context())
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		r.errorResponse(w, errors.New(ErrInternal), ErrInternal)
		if r.Metrics != nil {
			r.Metrics.IncCounter(ListErrorsTotal)
		}
		return
	}

	response := make([]dto.ProfileDTO, 0, len(profiles))
	for i := range profiles {
		response = append(response, dto.NewProfileDTO(&profiles[i]))
	}

	w.Header().Set(ContentType, ContentTypeJson)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		r.errorResponse(w, err, ErrFailedToEncodeResponse)
		if r.Metrics != nil {
			r.Metrics.IncCounter(ListErrorsTotal)
		}
		return
	}
}

// Delete handles DELETE /api/users/{username}. Deleting an account that does
// not exist still succeeds.
func (r *Route) Delete(w http.ResponseWriter, req *http.Request) {
	if r.Metrics != nil {
		r.Metrics.IncCounter(DeleteRequestsTotal)
	}

	username := req.PathValue(UsernamePathParam)
	if err := r.AccountService.DeleteAccount(req.Context(), username); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		r.errorResponse(w, errors.New(ErrInternal), ErrInternal)
		if r.Metrics != nil {
			r.Metrics.IncCounter(DeleteErrorsTotal)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Update handles PUT /api/users/{username}: rename, password change, counter
// reset and balance withdrawal, each applied only when present in the body.
func (r *Route) Update(w http.ResponseWriter, req *http.Request) {
	if r.Metrics != nil {
		r.Metrics.IncCounter(UpdateRequestsTotal)
	}

	if req.Header.Get(ContentType) != ContentTypeJson {
		w.WriteHeader(http.StatusBadRequest)
		r.errorResponse(w, fmt.Errorf("invalid content-type: %s", req.Header.Get(ContentType)), ErrInvalidContentType)
		if r.Metrics != nil {
			r.Metrics.IncCounter(UpdateErrorsTotal)
		}
		return
	}

	updateRequest := &dto.UpdateRequestDTO{}
	if err := json.NewDecoder(req.Body).Decode(updateRequest); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		r.errorResponse(w, err, ErrInvalidRequestBody)
		if r.Metrics != nil {
			r.Metrics.IncCounter(UpdateErrorsTotal)
		}
		return
	}

	if err := r.validator.Struct(updateRequest); err != nil {
		errs := err.(structValidator.ValidationErrors)
		w.WriteHeader(http.StatusBadRequest)
		r.errorResponse(w, fmt.Errorf("invalid update data: %s", errs), ErrInvalidRequestBody)
		if r.Metrics != nil {
			r.Metrics.IncCounter(UpdateErrorsTotal)
		}
		return
	}

	username := req.PathValue(UsernamePathParam)
	if err := r.AccountService.UpdateAccount(req.Context(), username, *updateRequest); err != nil {
		switch {
		case errors.Is(err, accountservice.ErrAccountNotFound):
			w.WriteHeader(http.StatusNotFound)
			r.errorResponse(w, accountservice.ErrAccountNotFound, ErrAccountNotFound)
		case errors.Is(err, accountservice.ErrUsernameTaken):
			w.WriteHeader(http.StatusForbidden)
			r.errorResponse(w, accountservice.ErrUsernameTaken, ErrDuplicateUsername)
		default:
			w.WriteHeader(http.StatusInternalServerError)
			r.errorResponse(w, errors.New(ErrInternal), ErrInternal)
		}
		if r.Metrics != nil {
			r.Metrics.IncCounter(UpdateErrorsTotal)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Health handles GET /healthz by pinging the store.
func (r *Route) Health(w http.ResponseWriter, req *http.Request) {
	if r.DBClient == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	if err := r.DBClient.Ping(req.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		r.errorResponse(w, errors.New("store unreachable"), "store unreachable")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// errorResponse writes the {error, message} body. Internal failure details
// never travel through here; callers pass sanitized errors for 5xx.
func (r *Route) errorResponse(w http.ResponseWriter, err error, message string) {
	jsonResponse := map[string]string{
		"error":   err.Error(),
		"message": message,
	}
	_ = json.NewEncoder(w).Encode(jsonResponse)
}
