package routes

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/pitboss/accounts/internal/accountservice"
	"github.com/pitboss/accounts/internal/auth"
	"github.com/pitboss/accounts/internal/interfaces"
	"github.com/pitboss/accounts/internal/interfaces/mocks"
	"github.com/pitboss/accounts/internal/models"
	zerologger "github.com/pitboss/accounts/pkg/zerolog"

	structValidator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

const testKeyPath = "validKey.pem"

func TestMain(m *testing.M) {
	// Generate a new ECDSA private key
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		panic("failed to generate ECDSA key: " + err.Error())
	}

	// Marshal the private key to DER format
	der, err := x509.MarshalECPrivateKey(priv)
	if err != nil {
		panic("failed to marshal ECDSA key: " + err.Error())
	}

	// Create the PEM block
	block := &pem.Block{
		Type:  "EC PRIVATE KEY",
		Bytes: der,
	}

	// Write the PEM file
	f, err := os.Create(testKeyPath)
	if err != nil {
		panic("failed to create PEM file: " + err.Error())
	}
	if err := pem.Encode(f, block); err != nil {
		f.Close()
		_ = os.Remove(testKeyPath)
		panic("failed to encode PEM: " + err.Error())
	}
	f.Close()

	// Run the tests
	code := m.Run()

	// Clean up the PEM file after tests
	_ = os.Remove(testKeyPath)

	os.Exit(code)
}

func testLogger() interfaces.Logger {
	logger := zerologger.NewZerologLogger("routes-test")
	logger.SetLevel("ERROR")
	return logger
}

func newTestRoute(t *testing.T, repo interfaces.AccountRepository) *Route {
	t.Helper()

	privateKey, err := auth.LoadECDSAPrivateKey(testKeyPath)
	if err != nil {
		t.Fatalf("failed to load private key: %v", err)
	}

	service := accountservice.NewAccountService(repo, testLogger())
	return NewRoute(nil, service, privateKey, nil, structValidator.New())
}

// HashString creates a bcrypt hash of the input string
func HashString(t *testing.T, input string) string {
	t.Helper()
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(input), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash string: %v", err)
	}
	return string(hashedBytes)
}

func TestRoute_Register(t *testing.T) {
	tests := []struct {
		name           string
		contentType    string
		body           string
		existing       *models.Credential
		wantStatusCode int
	}{
		{
			name:           "Valid register request",
			contentType:    "application/json",
			body:           `{"username":"alice","password":"hunter2"}`,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "Missing Content-Type",
			contentType:    "",
			body:           `{"username":"alice","password":"hunter2"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "Invalid JSON body",
			contentType:    "application/json",
			body:           `{"username":"alice""password":"hunter2"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "Missing username",
			contentType:    "application/json",
			body:           `{"password":"hunter2"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "Missing password",
			contentType:    "application/json",
			body:           `{"username":"alice"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "Duplicate username",
			contentType:    "application/json",
			body:           `{"username":"alice","password":"hunter2"}`,
			existing:       &models.Credential{ID: "c1", Username: "alice", Secret: "hash"},
			wantStatusCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockAccountRepository(t)
			repo.On("GetCredentialByUsername", mock.Anything, "alice").
				Return(tt.existing, nil).Maybe()
			repo.On("AddCredential", mock.Anything, mock.AnythingOfType("models.Credential")).
				Return("c1", nil).Maybe()
			repo.On("AddProfile", mock.Anything, mock.AnythingOfType("models.Profile")).
				Return("p1", nil).Maybe()

			req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rr := httptest.NewRecorder()

			r := newTestRoute(t, repo)
			r.Register(rr, req)

			if rr.Code != tt.wantStatusCode {
				t.Errorf("got status %d, want %d", rr.Code, tt.wantStatusCode)
			}
			if strings.Contains(rr.Body.String(), "secret") || strings.Contains(rr.Body.String(), "hunter2") {
				t.Errorf("response leaks the secret: %s", rr.Body.String())
			}
		})
	}
}

func TestRoute_Register_ResponseBody(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	repo.On("GetCredentialByUsername", mock.Anything, "alice").Return(nil, nil)
	repo.On("AddCredential", mock.Anything, mock.AnythingOfType("models.Credential")).Return("c1", nil)
	repo.On("AddProfile", mock.Anything, mock.AnythingOfType("models.Profile")).Return("p1", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/users",
		bytes.NewBufferString(`{"username":"alice","password":"hunter2"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	r := newTestRoute(t, repo)
	r.Register(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var response struct {
		User struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
		Profile struct {
			Username string  `json:"username"`
			Balance  float64 `json:"balance"`
			Wins     int64   `json:"wins"`
			Losses   int64   `json:"losses"`
		} `json:"profile"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.User.ID != "c1" || response.User.Username != "alice" {
		t.Errorf("unexpected user in response: %+v", response.User)
	}
	if response.Profile.Username != "alice" || response.Profile.Balance != 0 ||
		response.Profile.Wins != 0 || response.Profile.Losses != 0 {
		t.Errorf("unexpected profile in response: %+v", response.Profile)
	}
}

func TestRoute_Login(t *testing.T) {
	hashedPassword := HashString(t, "testpass")

	tests := []struct {
		name           string
		contentType    string
		body           string
		wantStatusCode int
		wantCookie     bool
	}{
		{
			name:           "Valid login request",
			contentType:    "application/json",
			body:           `{"username":"testuser","password":"testpass"}`,
			wantStatusCode: http.StatusOK,
			wantCookie:     true,
		},
		{
			name:           "Missing Content-Type",
			contentType:    "",
			body:           `{"username":"testuser","password":"testpass"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "Invalid JSON body",
			contentType:    "application/json",
			body:           `{"username":"testuser""password":"testpass"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "Missing fields",
			contentType:    "application/json",
			body:           `{}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "Wrong password",
			contentType:    "application/json",
			body:           `{"username":"testuser","password":"wrong"}`,
			wantStatusCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockAccountRepository(t)
			repo.On("GetCredentialByUsername", mock.Anything, "testuser").Return(&models.Credential{
				ID:       "c1",
				Username: "testuser",
				Secret:   hashedPassword,
			}, nil).Maybe()

			req := httptest.NewRequest(http.MethodPost, "/api/users/login", bytes.NewBufferString(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rr := httptest.NewRecorder()

			r := newTestRoute(t, repo)
			r.Login(rr, req)

			if rr.Code != tt.wantStatusCode {
				t.Errorf("got status %d, want %d: %s", rr.Code, tt.wantStatusCode, rr.Body.String())
			}

			var sessionCookie *http.Cookie
			for _, c := range rr.Result().Cookies() {
				if c.Name == SessionCookieName {
					sessionCookie = c
				}
			}
			if tt.wantCookie && sessionCookie == nil {
				t.Error("expected session cookie, got none")
			}
			if !tt.wantCookie && sessionCookie != nil {
				t.Error("unexpected session cookie on failed login")
			}
		})
	}
}

// Unknown-username and wrong-password rejections must be byte-identical so
// the login endpoint cannot be used to enumerate accounts.
func TestRoute_Login_FailureResponsesIndistinguishable(t *testing.T) {
	hashedPassword := HashString(t, "testpass")

	login := func(t *testing.T, repo interfaces.AccountRepository, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/users/login", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		newTestRoute(t, repo).Login(rr, req)
		return rr
	}

	unknownRepo := mocks.NewMockAccountRepository(t)
	unknownRepo.On("GetCredentialByUsername", mock.Anything, "ghost").Return(nil, nil)
	unknownResp := login(t, unknownRepo, `{"username":"ghost","password":"testpass"}`)

	wrongRepo := mocks.NewMockAccountRepository(t)
	wrongRepo.On("GetCredentialByUsername", mock.Anything, "testuser").Return(&models.Credential{
		Username: "testuser",
		Secret:   hashedPassword,
	}, nil)
	wrongResp := login(t, wrongRepo, `{"username":"testuser","password":"wrong"}`)

	if unknownResp.Code != http.StatusForbidden || wrongResp.Code != http.StatusForbidden {
		t.Fatalf("got statuses %d and %d, want both %d",
			unknownResp.Code, wrongResp.Code, http.StatusForbidden)
	}
	if !bytes.Equal(unknownResp.Body.Bytes(), wrongResp.Body.Bytes()) {
		t.Errorf("failure bodies differ: %q vs %q", unknownResp.Body.String(), wrongResp.Body.String())
	}
}

func TestRoute_List(t *testing.T) {
	t.Run("returns all profiles", func(t *testing.T) {
		repo := mocks.NewMockAccountRepository(t)
		repo.On("ListProfiles", mock.Anything).Return([]models.Profile{
			{ID: "p1", Username: "alice", Balance: 50, Wins: 2, Losses: 1, TotalDeposited: 100},
			{ID: "p2", Username: "bob"},
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		rr := httptest.NewRecorder()
		newTestRoute(t, repo).List(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("got status %d, want %d", rr.Code, http.StatusOK)
		}

		var profiles []map[string]interface{}
		if err := json.Unmarshal(rr.Body.Bytes(), &profiles); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(profiles) != 2 {
			t.Fatalf("got %d profiles, want 2", len(profiles))
		}
		if profiles[0]["username"] != "alice" || profiles[0]["balance"] != float64(50) {
			t.Errorf("unexpected first profile: %+v", profiles[0])
		}
	})

	t.Run("empty store encodes as empty array", func(t *testing.T) {
		repo := mocks.NewMockAccountRepository(t)
		repo.On("ListProfiles", mock.Anything).Return([]models.Profile{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		rr := httptest.NewRecorder()
		newTestRoute(t, repo).List(rr, req)

		if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
			t.Errorf("got body %q, want []", got)
		}
	})

	t.Run("store failure is a 500", func(t *testing.T) {
		repo := mocks.NewMockAccountRepository(t)
		repo.On("ListProfiles", mock.Anything).Return(nil, errors.New("connection reset"))

		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		rr := httptest.NewRecorder()
		newTestRoute(t, repo).List(rr, req)

		if rr.Code != http.StatusInternalServerError {
			t.Errorf("got status %d, want %d", rr.Code, http.StatusInternalServerError)
		}
		if strings.Contains(rr.Body.String(), "connection reset") {
			t.Errorf("response leaks internal error: %s", rr.Body.String())
		}
	})
}

func TestRoute_Delete(t *testing.T) {
	tests := []struct {
		name           string
		username       string
		deleteErr      error
		wantStatusCode int
	}{
		{
			name:           "Existing account",
			username:       "alice",
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "Missing account is still a success",
			username:       "ghost",
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "Store failure",
			username:       "alice",
			deleteErr:      errors.New("connection reset"),
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockAccountRepository(t)
			repo.On("DeleteCredential", mock.Anything, tt.username).Return(tt.deleteErr)
			repo.On("DeleteProfile", mock.Anything, tt.username).Return(nil).Maybe()

			req := httptest.NewRequest(http.MethodDelete, "/api/users/"+tt.username, nil)
			req.SetPathValue(UsernamePathParam, tt.username)
			rr := httptest.NewRecorder()

			newTestRoute(t, repo).Delete(rr, req)

			if rr.Code != tt.wantStatusCode {
				t.Errorf("got status %d, want %d", rr.Code, tt.wantStatusCode)
			}
		})
	}
}

func TestRoute_Update(t *testing.T) {
	tests := []struct {
		name           string
		username       string
		contentType    string
		body           string
		known          bool
		wantStatusCode int
	}{
		{
			name:           "Reset counters",
			username:       "alice",
			contentType:    "application/json",
			body:           `{"reset":true}`,
			known:          true,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "Withdraw balance",
			username:       "alice",
			contentType:    "application/json",
			body:           `{"withdraw":true}`,
			known:          true,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "Unknown account",
			username:       "ghost",
			contentType:    "application/json",
			body:           `{"reset":true}`,
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "Missing Content-Type",
			username:       "alice",
			contentType:    "",
			body:           `{"reset":true}`,
			known:          true,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "Invalid JSON body",
			username:       "alice",
			contentType:    "application/json",
			body:           `{"reset":tru`,
			known:          true,
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockAccountRepository(t)
			var cred *models.Credential
			var profile *models.Profile
			if tt.known {
				cred = &models.Credential{ID: "c1", Username: tt.username, Secret: "hash"}
				profile = &models.Profile{ID: "p1", Username: tt.username, Balance: 75, Wins: 4, Losses: 3}
			}
			repo.On("GetCredentialByUsername", mock.Anything, tt.username).Return(cred, nil).Maybe()
			repo.On("GetProfileByUsername", mock.Anything, tt.username).Return(profile, nil).Maybe()
			repo.On("UpdateCredential", mock.Anything, tt.username, mock.AnythingOfType("models.Credential")).
				Return(nil).Maybe()
			repo.On("UpdateProfile", mock.Anything, tt.username, mock.AnythingOfType("models.Profile")).
				Return(nil).Maybe()

			req := httptest.NewRequest(http.MethodPut, "/api/users/"+tt.username,
				bytes.NewBufferString(tt.body))
			req.SetPathValue(UsernamePathParam, tt.username)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rr := httptest.NewRecorder()

			newTestRoute(t, repo).Update(rr, req)

			if rr.Code != tt.wantStatusCode {
				t.Errorf("got status %d, want %d: %s", rr.Code, tt.wantStatusCode, rr.Body.String())
			}
		})
	}
}

func TestRoute_Health(t *testing.T) {
	tests := []struct {
		name           string
		pingErr        error
		wantStatusCode int
	}{
		{
			name:           "Healthy store",
			pingErr:        nil,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "Unreachable store",
			pingErr:        fmt.Errorf("no reachable servers"),
			wantStatusCode: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbClient := mocks.NewMockDBClient(t)
			dbClient.On("Ping", mock.Anything).Return(tt.pingErr)

			r := NewRoute(nil, nil, nil, dbClient, structValidator.New())

			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rr := httptest.NewRecorder()
			r.Health(rr, req)

			if rr.Code != tt.wantStatusCode {
				t.Errorf("got status %d, want %d", rr.Code, tt.wantStatusCode)
			}
		})
	}
}
