// Package weberror renders page-level errors without leaking internals.
package weberror

import (
	"net/http"

	apperrors "github.com/PedroJIzGar/timelogic/internal/platform/errors"
	"github.com/PedroJIzGar/timelogic/internal/services/shared/htmx"
	"github.com/PedroJIzGar/timelogic/internal/services/web/module"
	"github.com/PedroJIzGar/timelogic/internal/services/web/routepath"
	"github.com/PedroJIzGar/timelogic/internal/services/web/templates"
)

// HTTPStatus maps domain error codes onto page status codes. Validation
// failures are handled inline by forms, so anything that reaches a page
// render is a 404 or a client/server failure.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch apperrors.GetCode(err) {
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeUnknown:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// Write renders a localized error page. HTMX callers receive a bare
// fragment so swaps surface the failure in place.
func Write(w http.ResponseWriter, r *http.Request, deps module.Dependencies, err error) {
	if w == nil {
		return
	}
	locale := deps.Language(r)
	status := HTTPStatus(err)
	copyMap := templates.Copy(locale)

	data := templates.ErrorData{
		Status:  status,
		Message: apperrors.UserMessage(locale, err),
		HomeURL: routepath.App,
		T:       copyMap,
	}

	w.WriteHeader(status)
	if htmx.IsHTMXRequest(r) {
		_ = templates.Fragment("error_page", data).Render(r.Context(), w)
		return
	}
	viewer := deps.ViewerFor(r)
	layout := templates.LayoutData{
		Title: data.Message,
		Lang:  locale,
		Viewer: templates.NavViewer{
			SignedIn:    viewer.SignedIn,
			DisplayName: viewer.DisplayName,
			Email:       viewer.Email,
			Manager:     viewer.Manager(),
		},
		T: copyMap,
	}
	_ = templates.Page(layout, "error_page", data).Render(r.Context(), w)
}

// WriteNotFound renders the localized 404 page.
func WriteNotFound(w http.ResponseWriter, r *http.Request, deps module.Dependencies) {
	Write(w, r, deps, apperrors.New(apperrors.CodeNotFound, "page not found"))
}
