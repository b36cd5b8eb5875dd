package handler

import (
	"net/http"

	"github.com/go-authix/internal/application/auth"
	"github.com/go-authix/internal/domain"
	"github.com/go-authix/internal/pkg/validate"
)

// AuthHandler handles login, registration and verification-code endpoints.
type AuthHandler struct {
	svc        auth.Service
	exposeCode bool
}

// NewAuthHandler builds the handler. When exposeCode is set the issued
// verification code is echoed back by send-code.
func NewAuthHandler(svc auth.Service, exposeCode bool) *AuthHandler {
	return &AuthHandler{svc: svc, exposeCode: exposeCode}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !bind(w, r, &req) {
		return
	}
	id, err := h.svc.Register(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, id)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !bind(w, r, &req) {
		return
	}
	pair, err := h.svc.Login(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, pair)
}

func (h *AuthHandler) SendCode(w http.ResponseWriter, r *http.Request) {
	var req domain.SendCodeRequest
	if !bind(w, r, &req) {
		return
	}
	code, err := h.svc.SendCode(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	if h.exposeCode {
		writeOK(w, code)
		return
	}
	writeOK(w, nil)
}

func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyCodeRequest
	if !bind(w, r, &req) {
		return
	}
	ok, err := h.svc.VerifyCode(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid verification code")
		return
	}
	writeOK(w, true)
}

// bind decodes and validates a JSON body, writing a 400 on failure.
func bind(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := decodeBody(r, v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(v); err != nil {
		httpError(w, r, err)
		return false
	}
	return true
}
