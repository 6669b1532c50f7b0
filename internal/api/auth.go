package api

import (
	"net/http"
)

// SignUp handles POST /api/auth/signup.
//
//	@Summary		Register an account and open a session
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SignUpRequest	true	"Account"
//	@Success		201		{object}	SessionResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Router			/auth/signup [post]
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "sign up", err)
		return
	}
	sess, err := h.accounts.SignUp(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, r, "sign up", err)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionResponse(sess, true))
}

// SignIn handles POST /api/auth/signin.
//
//	@Summary		Open a session with email and password
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SignInRequest	true	"Credentials"
//	@Success		200		{object}	SessionResponse
//	@Failure		401		{object}	errResponse
//	@Router			/auth/signin [post]
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "sign in", err)
		return
	}
	sess, err := h.accounts.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, "sign in", err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(sess, true))
}

// SignOut handles POST /api/auth/signout.
//
//	@Summary		Revoke the current session
//	@Tags			auth
//	@Success		204	"Signed out"
//	@Failure		401	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/auth/signout [post]
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	if err := h.accounts.SignOut(r.Context(), sess.Token); err != nil {
		writeError(w, r, "sign out", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Session handles GET /api/auth/session.
//
//	@Summary		Describe the current session
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	SessionResponse
//	@Failure		401	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/auth/session [get]
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newSessionResponse(SessionFromContext(r.Context()), false))
}
