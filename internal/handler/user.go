package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wtfunko/backend/internal/auth"
	"github.com/wtfunko/backend/internal/service"
)

// UserHandler exposes account endpoints: signup, login, the authenticated
// profile, and per-user CRUD.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is what signup and login return: the account (without the
// password hash, which never serialises) plus a bearer token.
type authResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"token"`
}

// HandleSignup registers a new account and logs it in.
//
// HTTP: POST /api/signup
// REQUEST BODY: {"username": "...", "email": "...", "password": "..."}
//
// A taken username is 409; validation failures are 400.
func (h *UserHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.users.Signup(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Username: result.User.Username,
		Email:    result.User.Email,
		Token:    result.Token,
	})
}

// HandleLogin authenticates an account and issues a token.
//
// HTTP: POST /api/login
// REQUEST BODY: {"username": "...", "password": "..."}
//
// An unknown username is 404; a wrong password is 401.
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Username: result.User.Username,
		Email:    result.User.Email,
		Token:    result.Token,
	})
}

// HandleMe returns the account behind the request's token.
//
// HTTP: GET /api/me  (requires Authorization: Bearer <token>)
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		// RequireAuth guards this route; reaching here without a username
		// means the middleware was not applied.
		h.logger.Error("profile requested without authenticated context")
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "authentication required",
		})
		return
	}

	user, err := h.users.Get(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleFind looks up one account by username or email, whichever query
// parameter is supplied. Missing both is 400; no match is 404.
//
// HTTP: GET /api/users?username=...&email=...
func (h *UserHandler) HandleFind(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	user, err := h.users.GetByUsernameOrEmail(r.Context(), q.Get("username"), q.Get("email"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleGet returns one account by username.
//
// HTTP: GET /api/users/{username}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleUpdate changes an account's email and, when supplied, password.
// An empty password in the body leaves the stored credential untouched.
//
// HTTP: PUT /api/users/{username}
// REQUEST BODY: {"email": "...", "password": "..."}
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.Update(r.Context(), chi.URLParam(r, "username"), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleDelete removes an account and every order it placed.
//
// HTTP: DELETE /api/users/{username}
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), chi.URLParam(r, "username")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
