package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestGetCodeUnwrapsChain(t *testing.T) {
	err := fmt.Errorf("handler: %w", New(CodeTimeclockAlreadyOn, "open entry exists"))
	if got := GetCode(err); got != CodeTimeclockAlreadyOn {
		t.Fatalf("GetCode = %s, want %s", got, CodeTimeclockAlreadyOn)
	}
	if got := GetCode(stderrors.New("plain")); got != CodeUnknown {
		t.Fatalf("GetCode = %s, want %s", got, CodeUnknown)
	}
}

func TestUserMessageLocalizesSpanish(t *testing.T) {
	err := New(CodeAuthInvalidCredentials, "bcrypt mismatch for user")
	got := UserMessage("es-ES", err)
	if got != "Correo electrónico o contraseña incorrectos" {
		t.Fatalf("UserMessage = %q", got)
	}
}

func TestUserMessageRendersMetadata(t *testing.T) {
	err := WithMetadata(CodeAuthPasswordTooShort, "password too short", map[string]string{
		"MinLength": "8",
	})
	got := UserMessage("es-ES", err)
	want := "La contraseña debe tener al menos 8 caracteres"
	if got != want {
		t.Fatalf("UserMessage = %q, want %q", got, want)
	}
}

func TestUserMessageGenericFallbackForUnmappedCode(t *testing.T) {
	err := New(Code("SOME_NEW_CODE"), "internal detail that must not leak")
	got := UserMessage("es-ES", err)
	if got != "Algo salió mal. Inténtalo de nuevo." {
		t.Fatalf("UserMessage = %q, want generic Spanish fallback", got)
	}
	if got == err.Message {
		t.Fatal("internal message leaked to the user")
	}
}

func TestUserMessageGenericFallbackForPlainError(t *testing.T) {
	got := UserMessage("en-US", stderrors.New("sql: connection refused"))
	if got != "Something went wrong. Please try again." {
		t.Fatalf("UserMessage = %q, want generic fallback", got)
	}
}

func TestHandleErrorBuildsStatusWithCode(t *testing.T) {
	err := HandleError(New(CodeNotFound, "employee missing"), "en-US")
	st, ok := status.FromError(err)
	if !ok {
		t.Fatalf("expected gRPC status, got %v", err)
	}
	if st.Code() != codes.NotFound {
		t.Fatalf("status code = %s, want %s", st.Code(), codes.NotFound)
	}
}

func TestHandleErrorNil(t *testing.T) {
	if err := HandleError(nil, "en-US"); err != nil {
		t.Fatalf("HandleError(nil) = %v", err)
	}
}

func TestErrorIsMatchesByCode(t *testing.T) {
	base := New(CodeTimeclockNotOn, "nothing open")
	wrapped := fmt.Errorf("sign out: %w", base)
	if !stderrors.Is(wrapped, New(CodeTimeclockNotOn, "different message")) {
		t.Fatal("expected code-based match")
	}
	if stderrors.Is(wrapped, New(CodeTimeclockNotPaused, "")) {
		t.Fatal("unexpected match across codes")
	}
}

func TestGRPCCodeMapping(t *testing.T) {
	cases := []struct {
		code Code
		want codes.Code
	}{
		{CodeAuthEmailInvalid, codes.InvalidArgument},
		{CodeAuthInvalidCredentials, codes.Unauthenticated},
		{CodeAuthSessionExpired, codes.Unauthenticated},
		{CodeAuthEmailTaken, codes.AlreadyExists},
		{CodeAuthResetTokenInvalid, codes.NotFound},
		{CodeTimeclockAlreadyOn, codes.FailedPrecondition},
		{CodeNotFound, codes.NotFound},
		{CodeUnknown, codes.Internal},
	}
	for _, tc := range cases {
		if got := tc.code.GRPCCode(); got != tc.want {
			t.Errorf("GRPCCode(%s) = %s, want %s", tc.code, got, tc.want)
		}
	}
}
