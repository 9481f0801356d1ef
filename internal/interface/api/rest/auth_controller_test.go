package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fileshare-api/internal/application/services"
	domain "fileshare-api/internal/domain/user"
	"fileshare-api/internal/interface/api/rest/dto/auth"
)

type fakeAuthService struct {
	GenerateTokenFunc func(u *domain.User, password string) (string, error)
}

func (f *fakeAuthService) GenerateToken(u *domain.User, password string) (string, error) {
	if f.GenerateTokenFunc == nil {
		return "", errors.New("not used")
	}
	return f.GenerateTokenFunc(u, password)
}

func TestAuthController_LoginHandler(t *testing.T) {
	valid := auth.LoginRequest{Email: "user@example.com", Password: "VeryStrongPassw0rd!"}
	known := func(ctx context.Context, email string) (*domain.User, error) {
		assert.Equal(t, valid.Email, email)
		return &domain.User{Email: email}, nil
	}

	tests := []struct {
		name          string
		body          any
		findByEmail   func(ctx context.Context, email string) (*domain.User, error)
		generateToken func(u *domain.User, password string) (string, error)
		wantStatus    int
		wantErr       string
		wantToken     string
	}{
		{
			name:       "400 invalid JSON",
			body:       "{bad json",
			wantStatus: http.StatusBadRequest,
			wantErr:    "invalid json",
		},
		{
			name:       "400 validation error",
			body:       auth.LoginRequest{Email: "not-an-email"},
			wantStatus: http.StatusBadRequest,
			wantErr:    "invalid request body",
		},
		{
			name: "500 lookup failure",
			body: valid,
			findByEmail: func(ctx context.Context, email string) (*domain.User, error) {
				return nil, errors.New("db error")
			},
			wantStatus: http.StatusInternalServerError,
			wantErr:    "failed to get a user",
		},
		{
			name: "401 unknown email",
			body: valid,
			findByEmail: func(ctx context.Context, email string) (*domain.User, error) {
				return nil, nil
			},
			wantStatus: http.StatusUnauthorized,
			wantErr:    services.ErrInvalidCredentials.Error(),
		},
		{
			name:        "401 wrong password",
			body:        valid,
			findByEmail: known,
			generateToken: func(u *domain.User, password string) (string, error) {
				return "", services.ErrInvalidCredentials
			},
			wantStatus: http.StatusUnauthorized,
			wantErr:    services.ErrInvalidCredentials.Error(),
		},
		{
			name:        "500 signing failure",
			body:        valid,
			findByEmail: known,
			generateToken: func(u *domain.User, password string) (string, error) {
				return "", services.ErrFailedToGenerateToken
			},
			wantStatus: http.StatusInternalServerError,
			wantErr:    services.ErrFailedToGenerateToken.Error(),
		},
		{
			name:        "200 token issued",
			body:        valid,
			findByEmail: known,
			generateToken: func(u *domain.User, password string) (string, error) {
				assert.Equal(t, valid.Password, password)
				return "tok_123", nil
			},
			wantStatus: http.StatusOK,
			wantToken:  "tok_123",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			r := gin.New()
			NewAuthController(r, zap.NewNop(),
				&FakeUserService{FindByEmailFunc: tt.findByEmail},
				&fakeAuthService{GenerateTokenFunc: tt.generateToken},
			)

			rr := doReq(t, r, http.MethodPost, RouteLogin, tt.body, nil)
			require.Equal(t, tt.wantStatus, rr.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, resp["error"])
			}
			if tt.wantToken != "" {
				assert.Equal(t, tt.wantToken, resp["access_token"])
				assert.Equal(t, "Bearer", resp["token_type"])
			}
		})
	}
}
