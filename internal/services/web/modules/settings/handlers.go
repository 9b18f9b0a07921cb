package settings

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/text/language"

	apperrors "github.com/PedroJIzGar/timelogic/internal/platform/errors"
	"github.com/PedroJIzGar/timelogic/internal/services/auth/authclient"
	"github.com/PedroJIzGar/timelogic/internal/services/shared/i18nhttp"
	"github.com/PedroJIzGar/timelogic/internal/services/web/module"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/flash"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/httpx"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/pagerender"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/weberror"
	"github.com/PedroJIzGar/timelogic/internal/services/web/routepath"
	"github.com/PedroJIzGar/timelogic/internal/services/web/templates"
)

const savedQueryKey = "saved"

type handlers struct {
	deps module.Dependencies
	auth accountGateway
}

func (h handlers) handlePage(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "", http.StatusOK)
}

func (h handlers) renderPage(w http.ResponseWriter, r *http.Request, formError string, status int) {
	viewer := h.deps.ViewerFor(r)
	locale := h.deps.Language(r)
	copyMap := templates.Copy(locale)

	data := templates.SettingsData{
		DisplayName: viewer.DisplayName,
		Email:       viewer.Email,
		Locale:      locale,
		ProfileURL:  routepath.AppSettingsProfile,
		PasswordURL: routepath.AppSettingsPassword,
		BeginURL:    routepath.AppSettingsPasskeysBegin,
		FinishURL:   routepath.AppSettingsPasskeysFinish,
		FormError:   formError,
		Saved:       r.URL.Query().Get(savedQueryKey) != "",
		T:           copyMap,
	}
	for _, option := range i18nhttp.BuildLanguageOptions(locale, func(tag language.Tag) string {
		return copyMap[i18nhttp.LanguageKeyLabel(tag)]
	}) {
		data.Locales = append(data.Locales, templates.LanguageOption{
			Tag:    option.Tag,
			Label:  option.Label,
			Active: option.Active,
		})
	}

	// Passkeys come from the identity service. The rest of the page is
	// still useful when that call fails, so only the list is dropped.
	if passkeys, err := h.auth.ListPasskeys(r.Context(), viewer.UserID); err == nil {
		for _, p := range passkeys {
			data.Passkeys = append(data.Passkeys, templates.PasskeyRow{
				ID:         p.ID,
				Name:       p.Name,
				CreatedAt:  p.CreatedAt,
				LastUsedAt: p.LastUsedAt,
				DeleteURL:  routepath.PasskeyDelete(p.ID),
			})
		}
	}

	pagerender.WriteModulePage(w, r, h.deps, pagerender.ModulePage{
		Title:       copyMap["settings.title"],
		ActiveNav:   "settings",
		StatusCode:  status,
		ContentName: "settings_page",
		Data:        data,
	})
}

func (h handlers) handleProfile(w http.ResponseWriter, r *http.Request) {
	viewer := h.deps.ViewerFor(r)
	if err := r.ParseForm(); err != nil {
		weberror.Write(w, r, h.deps, apperrors.Wrap(apperrors.CodeUnknown, "parse profile form", err))
		return
	}

	patch := authclient.ProfilePatch{}
	if name := strings.TrimSpace(r.PostFormValue("display_name")); name != "" {
		patch.DisplayName = &name
	}
	var selected language.Tag
	if raw := r.PostFormValue("locale"); raw != "" {
		tag, ok := i18nhttp.ParseTag(raw)
		if !ok {
			h.renderPage(w, r, apperrors.UserMessage(h.deps.Language(r), apperrors.New(apperrors.CodeUnknown, "unsupported locale")), http.StatusUnprocessableEntity)
			return
		}
		selected = tag
		locale := i18nhttp.Locale(tag)
		patch.Locale = &locale
	}

	if _, err := h.auth.UpdateProfile(r.Context(), viewer.UserID, patch); err != nil {
		h.renderPage(w, r, apperrors.UserMessage(h.deps.Language(r), err), http.StatusUnprocessableEntity)
		return
	}
	if patch.Locale != nil {
		i18nhttp.SetLanguageCookie(w, selected)
	}
	httpx.WriteRedirect(w, r, routepath.AppSettings+"?"+savedQueryKey+"=1")
}

func (h handlers) handlePassword(w http.ResponseWriter, r *http.Request) {
	viewer := h.deps.ViewerFor(r)
	if err := r.ParseForm(); err != nil {
		weberror.Write(w, r, h.deps, apperrors.Wrap(apperrors.CodeUnknown, "parse password form", err))
		return
	}
	err := h.auth.ChangePassword(r.Context(), viewer.UserID, r.PostFormValue("current_password"), r.PostFormValue("new_password"))
	if err != nil {
		h.renderPage(w, r, apperrors.UserMessage(h.deps.Language(r), err), http.StatusUnprocessableEntity)
		return
	}
	flash.Write(w, r, h.deps.SchemePolicy, flash.Notice{Kind: flash.KindSuccess, Key: "flash.password_changed"})
	httpx.WriteRedirect(w, r, routepath.AppSettings)
}

func (h handlers) handlePasskeysBegin(w http.ResponseWriter, r *http.Request) {
	viewer := h.deps.ViewerFor(r)
	ceremony, err := h.auth.BeginPasskeyRegistration(r.Context(), viewer.UserID)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		SessionID string          `json:"session_id"`
		Options   json.RawMessage `json:"options"`
	}{SessionID: ceremony.SessionID, Options: ceremony.Options})
}

func (h handlers) handlePasskeysFinish(w http.ResponseWriter, r *http.Request) {
	viewer := h.deps.ViewerFor(r)
	var payload struct {
		SessionID          string          `json:"session_id"`
		Name               string          `json:"name"`
		CredentialResponse json.RawMessage `json:"credential_response"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, apperrors.Wrap(apperrors.CodeUnknown, "decode passkey payload", err))
		return
	}
	if err := h.auth.FinishPasskeyRegistration(r.Context(), viewer.UserID, payload.SessionID, payload.Name, payload.CredentialResponse); err != nil {
		writeJSONError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h handlers) handlePasskeyDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.DeletePasskey(r.Context(), r.PathValue("credentialID")); err != nil {
		weberror.Write(w, r, h.deps, fmt.Errorf("delete passkey: %w", err))
		return
	}
	flash.Write(w, r, h.deps.SchemePolicy, flash.Notice{Kind: flash.KindSuccess, Key: "flash.passkey_deleted"})
	httpx.WriteRedirect(w, r, routepath.AppSettings)
}

func writeJSONError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": string(apperrors.GetCode(err))})
}
