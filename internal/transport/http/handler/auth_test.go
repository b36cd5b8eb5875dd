package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-authix/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegister_Success(t *testing.T) {
	svc := &mockAuthSvc{}
	req := domain.RegisterRequest{RegisterType: "password", Identifier: "alice_01", Credential: "Secret#123"}
	svc.On("Register", mock.Anything, req).Return(uint64(7), nil)
	h := NewAuthHandler(svc, false)

	rr := httptest.NewRecorder()
	h.Register(rr, jsonReq(t, http.MethodPost, "/v1/auth/register", req))

	assert.Equal(t, http.StatusOK, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.True(t, env.Success)
	assert.Equal(t, "7", string(env.Data))
}

func TestRegister_MissingFields(t *testing.T) {
	svc := &mockAuthSvc{}
	h := NewAuthHandler(svc, false)

	rr := httptest.NewRecorder()
	h.Register(rr, jsonReq(t, http.MethodPost, "/v1/auth/register", map[string]string{"register_type": "password"}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestRegister_MalformedBody(t *testing.T) {
	h := NewAuthHandler(&mockAuthSvc{}, false)

	rr := httptest.NewRecorder()
	h.Register(rr, httptest.NewRequest(http.MethodPost, "/v1/auth/register", strings.NewReader("{")))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.False(t, decodeEnvelope(t, rr).Success)
}

func TestRegister_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("bob: %w", domain.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("x: %w", domain.ErrUnknownStrategy), http.StatusBadRequest},
		{fmt.Errorf("x: %w", domain.ErrCodeExpired), http.StatusBadRequest},
		{fmt.Errorf("alice: %w", domain.ErrConflict), http.StatusConflict},
		{fmt.Errorf("sqlite: %w: %w", domain.ErrInfrastructure, errors.New("disk full")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		svc := &mockAuthSvc{}
		svc.On("Register", mock.Anything, mock.Anything).Return(uint64(0), tc.err)
		h := NewAuthHandler(svc, false)

		rr := httptest.NewRecorder()
		h.Register(rr, jsonReq(t, http.MethodPost, "/v1/auth/register",
			domain.RegisterRequest{RegisterType: "password", Identifier: "bob", Credential: "pw"}))

		assert.Equal(t, tc.status, rr.Code, tc.err.Error())
	}
}

func TestRegister_InfrastructureMessageIsGeneric(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Register", mock.Anything, mock.Anything).
		Return(uint64(0), fmt.Errorf("sqlite: %w: %w", domain.ErrInfrastructure, errors.New("secret dsn")))
	h := NewAuthHandler(svc, false)

	rr := httptest.NewRecorder()
	h.Register(rr, jsonReq(t, http.MethodPost, "/v1/auth/register",
		domain.RegisterRequest{RegisterType: "password", Identifier: "bob", Credential: "pw"}))

	env := decodeEnvelope(t, rr)
	assert.NotContains(t, env.Message, "secret dsn")
}

func TestLogin_Success(t *testing.T) {
	svc := &mockAuthSvc{}
	pair := &domain.TokenPair{AccessToken: "a", RefreshToken: "r", ExpiresAt: 2000, IssuedAt: 1000}
	svc.On("Login", mock.Anything, mock.Anything).Return(pair, nil)
	h := NewAuthHandler(svc, false)

	rr := httptest.NewRecorder()
	h.Login(rr, jsonReq(t, http.MethodPost, "/v1/auth/login",
		domain.LoginRequest{LoginType: "password", Identifier: "alice_01", Credential: "Secret#123"}))

	require.Equal(t, http.StatusOK, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.JSONEq(t, `{"access_token":"a","refresh_token":"r","exp":2000,"iat":1000}`, string(env.Data))
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Login", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("login: %w", domain.ErrInvalidCredentials))
	h := NewAuthHandler(svc, false)

	rr := httptest.NewRecorder()
	h.Login(rr, jsonReq(t, http.MethodPost, "/v1/auth/login",
		domain.LoginRequest{LoginType: "password", Identifier: "alice_01", Credential: "wrong"}))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSendCode_ExposeCode(t *testing.T) {
	for _, expose := range []bool{true, false} {
		svc := &mockAuthSvc{}
		svc.On("SendCode", mock.Anything, mock.Anything).Return("123456", nil)
		h := NewAuthHandler(svc, expose)

		rr := httptest.NewRecorder()
		h.SendCode(rr, jsonReq(t, http.MethodPost, "/v1/auth/send-code",
			domain.SendCodeRequest{Identifier: "+8613800138000", VerifyType: "sms"}))

		require.Equal(t, http.StatusOK, rr.Code)
		env := decodeEnvelope(t, rr)
		if expose {
			assert.Equal(t, `"123456"`, string(env.Data))
		} else {
			assert.Empty(t, env.Data)
		}
	}
}

func TestVerifyCode_Mismatch(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("VerifyCode", mock.Anything, mock.Anything).Return(false, nil)
	h := NewAuthHandler(svc, false)

	rr := httptest.NewRecorder()
	h.VerifyCode(rr, jsonReq(t, http.MethodPost, "/v1/auth/verify-code",
		domain.VerifyCodeRequest{Identifier: "+8613800138000", Credential: "000000", VerifyType: "login"}))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestVerifyCode_UnknownScene(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("VerifyCode", mock.Anything, mock.Anything).Return(false, fmt.Errorf("%q: %w", "reset", domain.ErrUnknownScene))
	h := NewAuthHandler(svc, false)

	rr := httptest.NewRecorder()
	h.VerifyCode(rr, jsonReq(t, http.MethodPost, "/v1/auth/verify-code",
		domain.VerifyCodeRequest{Identifier: "+8613800138000", Credential: "000000", VerifyType: "reset"}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
