package sponsor

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"SoberTrack/internal/cli/apperr"
)

// Формат payload: "<префикс>.<base64url(json)>". Префикс включает версию,
// поэтому строку можно передавать любым текстовым каналом (мессенджер,
// буфер обмена) и однозначно распознать на другой стороне.
const (
	invitePrefix       = "ST1I."
	confirmationPrefix = "ST1C."
)

// InvitePayload — приглашение, передаваемое вне приложения.
type InvitePayload struct {
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
}

// ConfirmationPayload — ответ спонсора на приглашение.
type ConfirmationPayload struct {
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
}

// EncodeInvite сериализует приглашение.
func EncodeInvite(p InvitePayload) (string, error) {
	return encode(invitePrefix, p)
}

// DecodeInvite разбирает приглашение. Любой чужой или повреждённый ввод —
// ProtocolError, не паника.
func DecodeInvite(s string) (InvitePayload, error) {
	var p InvitePayload
	if err := decode(invitePrefix, "invite", s, &p); err != nil {
		return InvitePayload{}, err
	}
	if p.Code == "" {
		return InvitePayload{}, apperr.Protocol("invite payload without code")
	}
	return p, nil
}

// EncodeConfirmation сериализует подтверждение.
func EncodeConfirmation(p ConfirmationPayload) (string, error) {
	return encode(confirmationPrefix, p)
}

// DecodeConfirmation разбирает подтверждение.
func DecodeConfirmation(s string) (ConfirmationPayload, error) {
	var p ConfirmationPayload
	if err := decode(confirmationPrefix, "confirmation", s, &p); err != nil {
		return ConfirmationPayload{}, err
	}
	if p.Code == "" {
		return ConfirmationPayload{}, apperr.Protocol("confirmation payload without code")
	}
	return p, nil
}

func encode(prefix string, v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return prefix + base64.URLEncoding.EncodeToString(b), nil
}

func decode(prefix, kind, s string, v any) error {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, prefix) {
		return apperr.Protocol("not a %s payload", kind)
	}
	raw, err := base64.URLEncoding.DecodeString(strings.TrimPrefix(s, prefix))
	if err != nil {
		return apperr.Protocol("malformed %s payload", kind)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return apperr.Protocol("malformed %s payload", kind)
	}
	return nil
}
