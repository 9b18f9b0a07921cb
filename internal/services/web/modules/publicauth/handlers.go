package publicauth

import (
	"io"
	"net/http"
	"net/mail"
	"strings"
	"time"

	apperrors "github.com/PedroJIzGar/timelogic/internal/platform/errors"
	"github.com/PedroJIzGar/timelogic/internal/services/auth/authclient"
	"github.com/PedroJIzGar/timelogic/internal/services/web/module"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/flash"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/httpx"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/pagerender"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/rememberedemail"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/sessioncookie"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/weberror"
	"github.com/PedroJIzGar/timelogic/internal/services/web/routepath"
	"github.com/PedroJIzGar/timelogic/internal/services/web/templates"
)

type handlers struct {
	deps module.Dependencies
	auth authGateway
}

func (h handlers) handleRoot(w http.ResponseWriter, r *http.Request) {
	if h.deps.ViewerFor(r).SignedIn {
		httpx.WriteRedirect(w, r, routepath.App)
		return
	}
	httpx.WriteRedirect(w, r, routepath.Login)
}

func (handlers) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

// redirectSignedInGuest sends authenticated users to the app instead of
// guest-only pages.
func (h handlers) redirectSignedInGuest(w http.ResponseWriter, r *http.Request) bool {
	if !h.deps.ViewerFor(r).SignedIn {
		return false
	}
	httpx.WriteRedirect(w, r, routepath.App)
	return true
}

func (h handlers) copyFor(r *http.Request) map[string]string {
	return templates.Copy(h.deps.Language(r))
}

func (h handlers) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if h.redirectSignedInGuest(w, r) {
		return
	}
	data := templates.LoginData{
		Redirect: routepath.SanitizeRedirect(r.URL.Query().Get(routepath.RedirectQueryKey)),
		T:        h.copyFor(r),
	}
	if email, ok := rememberedemail.Read(r); ok {
		data.Email = email
		data.RememberMe = true
	}
	h.renderLogin(w, r, data, http.StatusOK)
}

func (h handlers) renderLogin(w http.ResponseWriter, r *http.Request, data templates.LoginData, status int) {
	pagerender.WriteModulePage(w, r, h.deps, pagerender.ModulePage{
		Title:       pageTitle(data.T, "login.title"),
		StatusCode:  status,
		ContentName: "login_page",
		Data:        data,
	})
}

func (h handlers) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		weberror.Write(w, r, h.deps, apperrors.Wrap(apperrors.CodeUnknown, "parse login form", err))
		return
	}
	copyMap := h.copyFor(r)
	data := templates.LoginData{
		Email:      strings.TrimSpace(r.PostFormValue("email")),
		RememberMe: r.PostFormValue("remember_me") != "",
		Redirect:   routepath.SanitizeRedirect(r.PostFormValue(routepath.RedirectQueryKey)),
		T:          copyMap,
	}

	// Syntactically invalid addresses never reach the identity provider.
	if _, err := mail.ParseAddress(data.Email); err != nil {
		data.FieldError = copyMap["login.invalid_email"]
		h.renderLogin(w, r, data, http.StatusUnprocessableEntity)
		return
	}

	result, err := h.auth.Login(r.Context(), data.Email, r.PostFormValue("password"), authclient.LoginOptions{RememberMe: data.RememberMe})
	if err != nil {
		data.FormError = apperrors.UserMessage(h.deps.Language(r), err)
		h.renderLogin(w, r, data, http.StatusUnprocessableEntity)
		return
	}

	ttl := time.Duration(0)
	if data.RememberMe {
		if remaining := time.Until(result.Session.ExpiresAt); remaining > 0 {
			ttl = remaining
		}
		rememberedemail.Write(w, r, h.deps.SchemePolicy, data.Email)
	} else {
		rememberedemail.Clear(w, r, h.deps.SchemePolicy)
	}
	sessioncookie.Write(w, r, h.deps.SchemePolicy, result.Session.ID, ttl)

	target := data.Redirect
	if target == "" {
		target = routepath.App
	}
	httpx.WriteRedirect(w, r, target)
}

func (h handlers) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	if h.redirectSignedInGuest(w, r) {
		return
	}
	h.renderRegister(w, r, templates.RegisterData{T: h.copyFor(r)}, http.StatusOK)
}

func (h handlers) renderRegister(w http.ResponseWriter, r *http.Request, data templates.RegisterData, status int) {
	pagerender.WriteModulePage(w, r, h.deps, pagerender.ModulePage{
		Title:       pageTitle(data.T, "register.title"),
		StatusCode:  status,
		ContentName: "register_page",
		Data:        data,
	})
}

func (h handlers) handleRegisterSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		weberror.Write(w, r, h.deps, apperrors.Wrap(apperrors.CodeUnknown, "parse register form", err))
		return
	}
	copyMap := h.copyFor(r)
	data := templates.RegisterData{
		Email:       strings.TrimSpace(r.PostFormValue("email")),
		DisplayName: strings.TrimSpace(r.PostFormValue("display_name")),
		FieldErrors: map[string]string{},
		T:           copyMap,
	}
	password := r.PostFormValue("password")

	if _, err := mail.ParseAddress(data.Email); err != nil {
		data.FieldErrors["email"] = copyMap["login.invalid_email"]
	}
	if password == "" {
		data.FieldErrors["password"] = copyMap["register.password_required"]
	}
	if len(data.FieldErrors) > 0 {
		h.renderRegister(w, r, data, http.StatusUnprocessableEntity)
		return
	}

	locale := h.deps.Language(r)
	if _, err := h.auth.Register(r.Context(), authclient.RegisterInput{
		Email:       data.Email,
		Password:    password,
		DisplayName: data.DisplayName,
		Locale:      locale,
	}); err != nil {
		data.FormError = apperrors.UserMessage(locale, err)
		h.renderRegister(w, r, data, http.StatusUnprocessableEntity)
		return
	}

	result, err := h.auth.Login(r.Context(), data.Email, password, authclient.LoginOptions{})
	if err != nil {
		// The account exists; let the user sign in manually.
		flash.Write(w, r, h.deps.SchemePolicy, flash.Notice{Kind: flash.KindSuccess, Key: "flash.account_created"})
		httpx.WriteRedirect(w, r, routepath.Login)
		return
	}
	sessioncookie.Write(w, r, h.deps.SchemePolicy, result.Session.ID, 0)
	httpx.WriteRedirect(w, r, routepath.App)
}

func (h handlers) handleResetRequestPage(w http.ResponseWriter, r *http.Request) {
	if h.redirectSignedInGuest(w, r) {
		return
	}
	h.renderResetRequest(w, r, templates.ResetRequestData{T: h.copyFor(r)}, http.StatusOK)
}

func (h handlers) renderResetRequest(w http.ResponseWriter, r *http.Request, data templates.ResetRequestData, status int) {
	pagerender.WriteModulePage(w, r, h.deps, pagerender.ModulePage{
		Title:       pageTitle(data.T, "reset.title"),
		StatusCode:  status,
		ContentName: "reset_request_page",
		Data:        data,
	})
}

func (h handlers) handleResetRequestSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		weberror.Write(w, r, h.deps, apperrors.Wrap(apperrors.CodeUnknown, "parse reset form", err))
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))

	// The outcome is identical whether or not the address has an account,
	// so existence cannot be probed from this form.
	_ = h.auth.RequestPasswordReset(r.Context(), email)

	flash.Write(w, r, h.deps.SchemePolicy, flash.Notice{Kind: flash.KindInfo, Key: "flash.reset_requested"})
	httpx.WriteRedirect(w, r, routepath.Login)
}

func (h handlers) handleResetCompletePage(w http.ResponseWriter, r *http.Request) {
	data := templates.ResetCompleteData{TokenID: r.PathValue("tokenID"), T: h.copyFor(r)}
	h.renderResetComplete(w, r, data, http.StatusOK)
}

func (h handlers) renderResetComplete(w http.ResponseWriter, r *http.Request, data templates.ResetCompleteData, status int) {
	pagerender.WriteModulePage(w, r, h.deps, pagerender.ModulePage{
		Title:       pageTitle(data.T, "reset.complete_title"),
		StatusCode:  status,
		ContentName: "reset_complete_page",
		Data:        data,
	})
}

func (h handlers) handleResetCompleteSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		weberror.Write(w, r, h.deps, apperrors.Wrap(apperrors.CodeUnknown, "parse reset form", err))
		return
	}
	tokenID := r.PathValue("tokenID")
	data := templates.ResetCompleteData{TokenID: tokenID, T: h.copyFor(r)}

	if err := h.auth.CompletePasswordReset(r.Context(), tokenID, r.PostFormValue("password")); err != nil {
		data.FormError = apperrors.UserMessage(h.deps.Language(r), err)
		h.renderResetComplete(w, r, data, http.StatusUnprocessableEntity)
		return
	}

	flash.Write(w, r, h.deps.SchemePolicy, flash.Notice{Kind: flash.KindSuccess, Key: "flash.password_updated"})
	httpx.WriteRedirect(w, r, routepath.Login)
}

func (h handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sessionID, ok := sessioncookie.Read(r); ok {
		// Revoking a missing session succeeds, so errors here are
		// connectivity problems; the cookie is cleared regardless.
		_ = h.auth.Logout(r.Context(), sessionID)
	}
	sessioncookie.Clear(w, r, h.deps.SchemePolicy)
	httpx.WriteRedirect(w, r, routepath.Login)
}

func (h handlers) handleNotFound(w http.ResponseWriter, r *http.Request) {
	weberror.WriteNotFound(w, r, h.deps)
}

func pageTitle(copyMap map[string]string, key string) string {
	title := copyMap[key]
	if title == "" {
		title = key
	}
	return title + " | TimeLogic"
}
