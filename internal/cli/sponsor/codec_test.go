package sponsor

import (
	"encoding/base64"
	"errors"
	"testing"

	"SoberTrack/internal/cli/apperr"
)

func TestInvite_RoundTrip(t *testing.T) {
	in := InvitePayload{Code: "code-1", DisplayName: "Bill W."}
	s, err := EncodeInvite(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeInvite(s)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: %+v != %+v", out, in)
	}
	// пробелы по краям не мешают (строку часто копируют из мессенджера)
	if _, err := DecodeInvite("  " + s + "\n"); err != nil {
		t.Fatalf("decode with surrounding whitespace: %v", err)
	}
}

func TestConfirmation_RoundTrip(t *testing.T) {
	in := ConfirmationPayload{Code: "code-2", DisplayName: "Dr. Bob"}
	s, err := EncodeConfirmation(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := DecodeConfirmation(s)
	if err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Fatalf("round trip mismatch")
	}
}

func TestDecode_MalformedInputs(t *testing.T) {
	inviteOK, _ := EncodeInvite(InvitePayload{Code: "c"})

	cases := []string{
		"",
		"random text",
		"ST9X.abc",                       // чужой префикс
		confirmationPrefix + "e30=",      // подтверждение вместо приглашения
		invitePrefix + "%%%not-base64",   // битый base64
		invitePrefix + base64.URLEncoding.EncodeToString([]byte("not json")),
		invitePrefix + base64.URLEncoding.EncodeToString([]byte(`{}`)), // без кода
	}
	for _, s := range cases {
		_, err := DecodeInvite(s)
		var pe *apperr.ProtocolError
		if !errors.As(err, &pe) {
			t.Fatalf("DecodeInvite(%q): want ProtocolError, got %v", s, err)
		}
	}

	// приглашение не разбирается как подтверждение
	var pe *apperr.ProtocolError
	if _, err := DecodeConfirmation(inviteOK); !errors.As(err, &pe) {
		t.Fatalf("invite must not decode as confirmation")
	}
}
