// Package i18n provides internationalization support for error messages.
package i18n

import (
	"bytes"
	"strings"
	"sync"
	"text/template"
)

// BaseLocale is the fallback locale for error messages.
const BaseLocale = "en-US"

// Code is a machine-readable error code (duplicated from errors package to avoid cycle).
type Code = string

// Catalog maps error codes to message templates for a specific locale.
type Catalog struct {
	locale   string
	messages map[Code]string
}

var (
	catalogsMu sync.RWMutex
	// catalogs holds built-in and override catalogs by locale.
	catalogs = map[string]*Catalog{}
)

func init() {
	RegisterCatalog("en-US", enUSCatalog)
	RegisterCatalog("es-ES", esESCatalog)
}

// GetCatalog returns the catalog for the given locale.
// Unknown locales resolve through their base language (es-MX finds es-ES)
// and finally fall back to en-US.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = BaseLocale
	}

	if c, ok := lookupCatalog(requested); ok {
		return c
	}
	if base, _, found := strings.Cut(requested, "-"); found {
		if c, ok := lookupBaseLanguage(base); ok {
			return c
		}
	}
	if c, ok := lookupCatalog(BaseLocale); ok {
		return c
	}
	return NewCatalog(BaseLocale, nil)
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Message renders the message template for a code and reports whether the
// catalog defines it. Callers decide what an unmapped code falls back to.
func (c *Catalog) Message(code Code, metadata map[string]string) (string, bool) {
	tmpl, ok := c.messages[code]
	if !ok {
		return "", false
	}
	return renderTemplate(tmpl, metadata), true
}

// Format renders the message template with the given metadata.
// Falls back to the error code itself if no template is found.
// Templates are always executed even with nil/empty metadata to ensure
// consistent output (template variables without metadata render as empty).
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	tmpl, ok := c.messages[code]
	if !ok {
		return code
	}
	return renderTemplate(tmpl, metadata)
}

func renderTemplate(tmpl string, metadata map[string]string) string {
	if metadata == nil {
		metadata = map[string]string{}
	}

	t, err := template.New("msg").Parse(tmpl)
	if err != nil {
		return tmpl
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}

// RegisterCatalog registers a catalog for the given locale, replacing any
// existing one. Built-in locales are registered during init; tests may
// install overrides.
func RegisterCatalog(locale string, cat *Catalog) {
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	catalogs[locale] = cat
}

// NewCatalog creates a new catalog with the given locale and messages.
func NewCatalog(locale string, messages map[Code]string) *Catalog {
	cloned := make(map[Code]string, len(messages))
	for key, value := range messages {
		cloned[key] = value
	}
	return &Catalog{
		locale:   locale,
		messages: cloned,
	}
}

// Locales returns the locales with registered catalogs.
func Locales() []string {
	catalogsMu.RLock()
	defer catalogsMu.RUnlock()
	out := make([]string, 0, len(catalogs))
	for locale := range catalogs {
		out = append(out, locale)
	}
	return out
}

func lookupCatalog(locale string) (*Catalog, bool) {
	catalogsMu.RLock()
	defer catalogsMu.RUnlock()
	cat, ok := catalogs[locale]
	return cat, ok
}

func lookupBaseLanguage(base string) (*Catalog, bool) {
	catalogsMu.RLock()
	defer catalogsMu.RUnlock()
	for locale, cat := range catalogs {
		if strings.HasPrefix(locale, base+"-") || locale == base {
			return cat, true
		}
	}
	return nil, false
}
