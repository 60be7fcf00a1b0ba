package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	appidentity "github.com/orders/backend/internal/application/identity"
	"github.com/orders/backend/internal/domain/identity"
	"github.com/orders/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func userRouter(accounts *MockAccountService, sessions *MockSessionService, p *appidentity.Principal) *gin.Engine {
	r := gin.New()
	NewUserHandler(accounts, sessions).RegisterRoutes(r.Group(""), asUser(p))
	return r
}

func TestUserHandler_Register(t *testing.T) {
	t.Run("registered", func(t *testing.T) {
		accounts := new(MockAccountService)
		accounts.On("Register", mock.Anything, appidentity.RegisterInput{
			FirstName: "Ivan",
			LastName:  "Petrov",
			Email:     "ivan@mailserver.org",
			Password:  "qwer1234Az",
			Company:   "Связной",
			Position:  "manager",
			Type:      identity.UserTypeShop,
		}).Return(&appidentity.UserDTO{ID: 3}, nil)

		w := perform(userRouter(accounts, nil, nil), http.MethodPost, "/user/register", `{
			"first_name": "Ivan", "last_name": "Petrov", "email": "ivan@mailserver.org",
			"password": "qwer1234Az", "company": "Связной", "position": "manager", "type": "shop"
		}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decode(t, w).Status)
		accounts.AssertExpectations(t)
	})

	t.Run("invalid email", func(t *testing.T) {
		accounts := new(MockAccountService)
		w := perform(userRouter(accounts, nil, nil), http.MethodPost, "/user/register", `{
			"first_name": "Ivan", "last_name": "Petrov", "email": "not-an-email",
			"password": "qwer1234Az", "company": "Связной", "position": "manager"
		}`)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.False(t, resp.Status)
		assert.Equal(t, dto.CodeValidation, resp.Code)
		assert.Equal(t, map[string]any{"email": "Invalid email format"}, resp.Errors)
		accounts.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("email taken", func(t *testing.T) {
		accounts := new(MockAccountService)
		accounts.On("Register", mock.Anything, mock.Anything).Return(nil, appidentity.ErrEmailTaken)

		w := perform(userRouter(accounts, nil, nil), http.MethodPost, "/user/register", `{
			"first_name": "Ivan", "last_name": "Petrov", "email": "ivan@mailserver.org",
			"password": "qwer1234Az", "company": "Связной", "position": "manager"
		}`)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.False(t, resp.Status)
		assert.Equal(t, "ALREADY_EXISTS", resp.Code)
	})
}

func TestUserHandler_Confirm(t *testing.T) {
	accounts := new(MockAccountService)
	accounts.On("Confirm", mock.Anything, "ivan@mailserver.org", "0123abcd").Return(nil)
	accounts.On("Confirm", mock.Anything, "ivan@mailserver.org", "wrong").Return(appidentity.ErrInvalidToken)
	r := userRouter(accounts, nil, nil)

	w := perform(r, http.MethodPost, "/user/confirm", `{"email":"ivan@mailserver.org","token":"0123abcd"}`)
	assert.True(t, decode(t, w).Status)

	w = perform(r, http.MethodPost, "/user/confirm", `{"email":"ivan@mailserver.org","token":"wrong"}`)
	resp := decode(t, w)
	assert.False(t, resp.Status)
	assert.Equal(t, "INVALID_TOKEN", resp.Code)
}

func TestUserHandler_Login(t *testing.T) {
	expires := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	sessions := new(MockSessionService)
	sessions.On("Login", mock.Anything, "ivan@mailserver.org", "qwer1234Az").
		Return(&appidentity.LoginResult{Token: "jwt.token.value", ExpiresAt: expires}, nil)
	sessions.On("Login", mock.Anything, "ivan@mailserver.org", "bad").
		Return(nil, appidentity.ErrInvalidCredentials)
	r := userRouter(nil, sessions, nil)

	w := perform(r, http.MethodPost, "/user/login", `{"email":"ivan@mailserver.org","password":"qwer1234Az"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"Status":true,"Token":"jwt.token.value","ExpiresAt":"2026-10-18T12:00:00Z"}`, w.Body.String())

	w = perform(r, http.MethodPost, "/user/login", `{"email":"ivan@mailserver.org","password":"bad"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decode(t, w).Code)

	w = perform(r, http.MethodPost, "/user/login", ``)
	assert.Equal(t, dto.CodeBadRequest, decode(t, w).Code)
}

func TestUserHandler_Details(t *testing.T) {
	accounts := new(MockAccountService)
	accounts.On("GetDetails", mock.Anything, uint64(1)).
		Return(&appidentity.UserDTO{ID: 1, Email: "buyer@mailserver.org", Type: identity.UserTypeBuyer}, nil)
	accounts.On("UpdateDetails", mock.Anything, uint64(1), mock.MatchedBy(func(in appidentity.UpdateDetailsInput) bool {
		return in.Company != nil && *in.Company == "Ситилинк" && in.FirstName == nil && in.Password == nil
	})).Return(&appidentity.UserDTO{ID: 1}, nil)
	r := userRouter(accounts, nil, buyer)

	w := perform(r, http.MethodGet, "/user/details", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"buyer@mailserver.org"`)
	assert.NotContains(t, w.Body.String(), "password")

	w = perform(r, http.MethodPost, "/user/details", `{"company":"Ситилинк"}`)
	assert.True(t, decode(t, w).Status)
	accounts.AssertExpectations(t)
}

func TestUserHandler_DetailsRequiresLogin(t *testing.T) {
	w := perform(userRouter(new(MockAccountService), nil, nil), http.MethodGet, "/user/details", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserHandler_Logout(t *testing.T) {
	sessions := new(MockSessionService)
	sessions.On("Logout", mock.Anything, buyer).Return(nil)

	w := perform(userRouter(nil, sessions, buyer), http.MethodPost, "/user/logout", "")
	assert.True(t, decode(t, w).Status)
	sessions.AssertExpectations(t)
}

func TestUserHandler_PasswordReset(t *testing.T) {
	accounts := new(MockAccountService)
	accounts.On("RequestPasswordReset", mock.Anything, "ivan@mailserver.org").Return(nil)
	accounts.On("ConfirmPasswordReset", mock.Anything, "ivan@mailserver.org", "0123abcd", "n3wPassw0rd").Return(nil)
	r := userRouter(accounts, nil, nil)

	w := perform(r, http.MethodPost, "/user/password_reset", `{"email":"ivan@mailserver.org"}`)
	assert.True(t, decode(t, w).Status)

	w = perform(r, http.MethodPost, "/user/password_reset/confirm",
		`{"email":"ivan@mailserver.org","token":"0123abcd","password":"n3wPassw0rd"}`)
	assert.True(t, decode(t, w).Status)

	w = perform(r, http.MethodPost, "/user/password_reset/confirm", `{"email":"ivan@mailserver.org"}`)
	resp := decode(t, w)
	assert.False(t, resp.Status)
	assert.Equal(t, map[string]any{"token": "This field is required", "password": "This field is required"}, resp.Errors)
	accounts.AssertExpectations(t)
}
