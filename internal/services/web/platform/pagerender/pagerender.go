// Package pagerender centralizes module page rendering behavior.
package pagerender

import (
	"net/http"

	"github.com/a-h/templ"
	"golang.org/x/text/language"

	"github.com/PedroJIzGar/timelogic/internal/services/shared/htmx"
	"github.com/PedroJIzGar/timelogic/internal/services/shared/i18nhttp"
	"github.com/PedroJIzGar/timelogic/internal/services/web/module"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/flash"
	"github.com/PedroJIzGar/timelogic/internal/services/web/templates"
)

// ModulePage describes a module page response for both full-page and
// HTMX flows. FragmentName defaults to ContentName, so pages without a
// dedicated fragment swap their whole body.
type ModulePage struct {
	Title        string
	ActiveNav    string
	StatusCode   int
	ContentName  string
	FragmentName string
	Data         any
}

// WriteModulePage writes a module page using the shared layout chrome.
func WriteModulePage(w http.ResponseWriter, r *http.Request, deps module.Dependencies, page ModulePage) {
	if w == nil {
		return
	}
	locale := deps.Language(r)
	copyMap := templates.Copy(locale)
	viewer := deps.ViewerFor(r)

	layout := templates.LayoutData{
		Title:     page.Title,
		Lang:      locale,
		ActiveNav: page.ActiveNav,
		Viewer: templates.NavViewer{
			SignedIn:    viewer.SignedIn,
			DisplayName: viewer.DisplayName,
			Email:       viewer.Email,
			Manager:     viewer.Manager(),
		},
		Languages: languageOptions(r, locale, copyMap),
		T:         copyMap,
	}
	if notice, ok := flash.ReadAndClear(w, r, deps.SchemePolicy); ok {
		message := notice.Message
		if message == "" {
			message = copyMap[notice.Key]
		}
		if message != "" {
			layout.Flash = &templates.FlashView{Kind: notice.Kind, Message: message}
		}
	}

	if page.StatusCode > 0 && page.StatusCode != http.StatusOK {
		w.WriteHeader(page.StatusCode)
	}

	fragmentName := page.FragmentName
	if fragmentName == "" {
		fragmentName = page.ContentName
	}
	var fragment templ.Component
	if htmx.IsHTMXRequest(r) {
		fragment = templates.Fragment(fragmentName, page.Data)
	}
	full := templates.Page(layout, page.ContentName, page.Data)
	htmx.RenderPage(w, r, fragment, full, htmx.TitleTag(page.Title))
}

func languageOptions(r *http.Request, activeLocale string, copyMap map[string]string) []templates.LanguageOption {
	path := "/"
	rawQuery := ""
	if r != nil && r.URL != nil {
		path = r.URL.Path
		rawQuery = r.URL.RawQuery
	}
	options := i18nhttp.BuildLanguageOptions(activeLocale, func(tag language.Tag) string {
		return copyMap[i18nhttp.LanguageKeyLabel(tag)]
	})
	out := make([]templates.LanguageOption, 0, len(options))
	for _, option := range options {
		out = append(out, templates.LanguageOption{
			Tag:    option.Tag,
			Label:  option.Label,
			URL:    i18nhttp.LanguageURL(path, rawQuery, option.Tag),
			Active: option.Active,
		})
	}
	return out
}
