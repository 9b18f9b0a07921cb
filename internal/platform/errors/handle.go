package errors

import (
	stderrors "errors"

	"github.com/PedroJIzGar/timelogic/internal/platform/errors/i18n"
)

// DefaultLocale is used when no caller locale is available.
const DefaultLocale = "en-US"

// GetCode extracts the domain code from an error chain.
// Returns CodeUnknown when err carries no domain error.
func GetCode(err error) Code {
	var domainErr *Error
	if stderrors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeUnknown
}

// GetMetadata extracts domain error metadata from an error chain.
func GetMetadata(err error) map[string]string {
	var domainErr *Error
	if stderrors.As(err, &domainErr) {
		return domainErr.Metadata
	}
	return nil
}

// UserMessage renders the localized user-facing message for an error.
// Unmapped codes fall back to the locale's generic message so raw codes
// never reach end users.
func UserMessage(locale string, err error) string {
	catalog := i18n.GetCatalog(locale)
	code := GetCode(err)
	if message, ok := catalog.Message(string(code), GetMetadata(err)); ok {
		return message
	}
	return catalog.Format(string(CodeUnknown), nil)
}

// HandleError converts a domain error into a gRPC status carrying both the
// machine-readable code and the localized user message. Errors without a
// domain code become internal statuses with the generic user message.
func HandleError(err error, locale string) error {
	if err == nil {
		return nil
	}
	userMessage := UserMessage(locale, err)
	var domainErr *Error
	if stderrors.As(err, &domainErr) {
		return domainErr.ToGRPCStatus(locale, userMessage)
	}
	wrapped := Wrap(CodeUnknown, err.Error(), err)
	return wrapped.ToGRPCStatus(locale, userMessage)
}
