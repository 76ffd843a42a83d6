package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	domainauth "github.com/smartbin/portal/internal/domain/auth"
	"github.com/smartbin/portal/internal/validation"
)

// AuthFacade is the part of the auth service used by the web handlers.
type AuthFacade interface {
	SessionReader
	Login(ctx context.Context, req domainauth.LoginRequest) (domainauth.Session, error)
	Register(ctx context.Context, req domainauth.RegisterRequest) (domainauth.RegistrationReceipt, error)
	Logout(ctx context.Context) error
	CheckUsernameAvailable(ctx context.Context, username string) (bool, error)
	CheckEmailAvailable(ctx context.Context, email string) (bool, error)
}

// WebHandlers serves the portal pages as JSON view models and redirects.
type WebHandlers struct {
	Auth   AuthFacade
	Logger *slog.Logger
	// RequireTerms makes registration fail unless the terms were accepted.
	RequireTerms bool
}

// SessionView is what the portal shows about the signed-in user. It never
// includes tokens.
type SessionView struct {
	User      domainauth.UserProfile `json:"user"`
	Workspace domainauth.Workspace   `json:"workspace"`
}

func sessionView(sess domainauth.Session) SessionView {
	return SessionView{User: sess.User, Workspace: domainauth.WorkspaceForRole(sess.User.Role)}
}

// AvailabilityView answers a username or email availability check.
type AvailabilityView struct {
	Available bool   `json:"available"`
	Message   string `json:"message,omitempty"`
}

type registerForm struct {
	domainauth.RegisterRequest
	AgreeTerms bool `json:"agreeTerms"`
}

func (h *WebHandlers) renderError(w http.ResponseWriter, r *http.Request, err error) {
	RenderError(ErrorOpts{W: w, R: r, Err: err, Logger: h.Logger})
}

func formBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.PostFormValue(key))
	return err == nil && v
}

func (h *WebHandlers) bindLogin(w http.ResponseWriter, r *http.Request) (domainauth.LoginRequest, bool) {
	var req domainauth.LoginRequest
	if isFormPost(r) {
		if err := r.ParseForm(); err != nil {
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_form", Err: err})
			return req, false
		}
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
		req.Remember = formBool(r, "remember")
		return req, true
	}
	return req, DecodeJSON(w, r, &req)
}

func (h *WebHandlers) bindRegister(w http.ResponseWriter, r *http.Request) (registerForm, bool) {
	var form registerForm
	if isFormPost(r) {
		if err := r.ParseForm(); err != nil {
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_form", Err: err})
			return form, false
		}
		form.Username = r.PostFormValue("username")
		form.Email = r.PostFormValue("email")
		form.Password = r.PostFormValue("password")
		form.ConfirmPassword = r.PostFormValue("confirmPassword")
		form.Phone = r.PostFormValue("phone")
		form.Company = r.PostFormValue("company")
		form.VerificationCode = r.PostFormValue("verificationCode")
		form.AgreeTerms = formBool(r, "agreeTerms")
		return form, true
	}
	return form, DecodeJSON(w, r, &form)
}

// Login handles POST /login. Browsers are redirected to their workspace home.
func (h *WebHandlers) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := h.bindLogin(w, r)
	if !ok {
		return
	}
	if err := validation.Login(req); err != nil {
		h.renderError(w, r, err)
		return
	}
	sess, err := h.Auth.Login(r.Context(), req)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	view := sessionView(sess)
	if IsBrowserRequest(r) {
		http.Redirect(w, r, view.Workspace.Home, http.StatusSeeOther)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

// Register handles POST /register. It does not sign the user in.
func (h *WebHandlers) Register(w http.ResponseWriter, r *http.Request) {
	form, ok := h.bindRegister(w, r)
	if !ok {
		return
	}
	opts := validation.RegisterOptions{RequireTerms: h.RequireTerms, TermsAccepted: form.AgreeTerms}
	if _, err := validation.Register(form.RegisterRequest, opts); err != nil {
		h.renderError(w, r, err)
		return
	}
	receipt, err := h.Auth.Register(r.Context(), form.RegisterRequest)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	if IsBrowserRequest(r) {
		http.Redirect(w, r, LoginPath+"?registered=1", http.StatusSeeOther)
		return
	}
	WriteJSON(w, http.StatusCreated, receipt)
}

// Logout handles POST /logout. It is safe without a session.
func (h *WebHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.Logout(r.Context()); err != nil && h.Logger != nil {
		h.Logger.WarnContext(r.Context(), "logout", "error", err)
	}
	redirectToLogin(w, r)
}

// Session handles GET /session behind RequireSession.
func (h *WebHandlers) Session(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		unauthenticated(w, r)
		return
	}
	WriteJSON(w, http.StatusOK, sessionView(sess))
}

// Dashboard handles GET /dashboard by sending the user to their workspace.
func (h *WebHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		unauthenticated(w, r)
		return
	}
	http.Redirect(w, r, domainauth.WorkspaceForRole(sess.User.Role).Home, http.StatusFound)
}

// Workspace handles GET /dashboard/{workspace}. A path naming the other
// workspace redirects to the caller's own.
func (h *WebHandlers) Workspace(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		unauthenticated(w, r)
		return
	}
	name, known := domainauth.ParseWorkspaceName(r.PathValue("workspace"))
	if !known {
		http.NotFound(w, r)
		return
	}
	view := sessionView(sess)
	if view.Workspace.Name != name {
		http.Redirect(w, r, view.Workspace.Home, http.StatusFound)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

// CheckUsername handles GET /check/username?username=.
func (h *WebHandlers) CheckUsername(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if err := validation.New().Validate("username", username, validation.Username()...).Err(); err != nil {
		h.renderError(w, r, err)
		return
	}
	ok, err := h.Auth.CheckUsernameAvailable(r.Context(), username)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, availability(ok, "Username is available.", "Username is already taken."))
}

// CheckEmail handles GET /check/email?email=.
func (h *WebHandlers) CheckEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if err := validation.New().Validate("email", email, validation.Email()...).Err(); err != nil {
		h.renderError(w, r, err)
		return
	}
	ok, err := h.Auth.CheckEmailAvailable(r.Context(), email)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, availability(ok, "Email is available.", "Email is already registered."))
}

func availability(ok bool, free, taken string) AvailabilityView {
	if ok {
		return AvailabilityView{Available: true, Message: free}
	}
	return AvailabilityView{Available: false, Message: taken}
}
