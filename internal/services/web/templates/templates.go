// Package templates renders web pages from embedded HTML templates.
//
// Pages are exposed as templ components so handlers compose them with
// the shared HTMX rendering helpers. The layout wraps a pre-rendered
// body fragment, keeping one chrome for every page.
package templates

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/PedroJIzGar/timelogic/internal/platform/i18n/catalog"
)

//go:embed pages/*.html
var pagesFS embed.FS

var pages = template.Must(template.New("pages").Funcs(template.FuncMap{
	"msg":     lookupMessage,
	"fmtTime": formatClock,
	"fmtDate": formatDate,
	"fmtDur":  formatDuration,
}).ParseFS(pagesFS, "pages/*.html"))

func lookupMessage(copyMap map[string]string, key string) string {
	if value, ok := copyMap[key]; ok {
		return value
	}
	return key
}

func formatClock(value any) string {
	t, ok := asTime(value)
	if !ok || t.IsZero() {
		return "-"
	}
	return t.Local().Format("15:04")
}

func formatDate(value any) string {
	t, ok := asTime(value)
	if !ok || t.IsZero() {
		return "-"
	}
	return t.Local().Format("Mon Jan 2")
}

func asTime(value any) (time.Time, bool) {
	switch t := value.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	default:
		return time.Time{}, false
	}
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	hours := d / time.Hour
	minutes := (d % time.Hour) / time.Minute
	seconds := (d % time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// FlashView is a resolved one-shot notice for the layout toast area.
type FlashView struct {
	Kind    string
	Message string
}

// NavViewer is the signed-in identity shown in the layout chrome.
type NavViewer struct {
	SignedIn    bool
	DisplayName string
	Email       string
	Manager     bool
}

// LanguageOption mirrors the language switcher entries.
type LanguageOption struct {
	Tag    string
	Label  string
	URL    string
	Active bool
}

// LayoutData is everything the page chrome needs.
type LayoutData struct {
	Title     string
	Lang      string
	ActiveNav string
	Viewer    NavViewer
	Flash     *FlashView
	Languages []LanguageOption
	T         map[string]string
}

type layoutEnvelope struct {
	LayoutData
	Body template.HTML
}

// Fragment renders a named content template on its own, for HTMX swaps.
func Fragment(name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return pages.ExecuteTemplate(w, name, data)
	})
}

// Page renders a named content template wrapped in the layout chrome.
func Page(layout LayoutData, name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var body bytes.Buffer
		if err := pages.ExecuteTemplate(&body, name, data); err != nil {
			return fmt.Errorf("render %s: %w", name, err)
		}
		return pages.ExecuteTemplate(w, "layout", layoutEnvelope{
			LayoutData: layout,
			Body:       template.HTML(body.String()),
		})
	})
}

// Copy returns the web namespace messages for a locale, falling back to
// the base locale for missing catalogs.
func Copy(locale string) map[string]string {
	_, messages := catalog.Default().NamespaceMessagesWithFallback(locale, "web")
	return messages
}

// Render writes a component to a string, mainly for tests.
func Render(component templ.Component) (string, error) {
	if component == nil {
		return "", nil
	}
	var out strings.Builder
	if err := component.Render(context.Background(), &out); err != nil {
		return "", err
	}
	return out.String(), nil
}
