package clerk

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Identity lifecycle event types delivered over the svix-signed channel.
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// Webhook verification errors.
var (
	ErrMissingSecret      = errors.New("webhook secret not configured")
	ErrMissingHeaders     = errors.New("missing svix webhook headers")
	ErrInvalidSecret      = errors.New("malformed webhook secret")
	ErrSignatureMismatch  = errors.New("webhook signature mismatch")
	ErrTimestampTolerance = errors.New("webhook timestamp outside tolerance")
)

// DefaultTolerance bounds the age of a signed identity notification.
const DefaultTolerance = 5 * time.Minute

// UserEvent is a verified identity lifecycle notification.
type UserEvent struct {
	Type string `json:"type"`
	Data User   `json:"data"`
}

// SignatureHeaders carries the three svix headers from the request.
type SignatureHeaders struct {
	ID        string // svix-id
	Timestamp string // svix-timestamp, unix seconds
	Signature string // svix-signature, space-separated "v1,<base64>" entries
}

// VerifyAndParse checks the svix signature over the exact payload bytes and
// parses the event only after verification passes.
func VerifyAndParse(payload []byte, headers SignatureHeaders, secret string) (UserEvent, error) {
	var event UserEvent

	if secret == "" {
		return event, ErrMissingSecret
	}
	if headers.ID == "" || headers.Timestamp == "" || headers.Signature == "" {
		return event, ErrMissingHeaders
	}

	timestamp, err := strconv.ParseInt(headers.Timestamp, 10, 64)
	if err != nil {
		return event, ErrMissingHeaders
	}
	age := time.Since(time.Unix(timestamp, 0))
	if age > DefaultTolerance || age < -DefaultTolerance {
		return event, ErrTimestampTolerance
	}

	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, "whsec_"))
	if err != nil {
		return event, ErrInvalidSecret
	}

	mac := hmac.New(sha256.New, key)
	fmt.Fprintf(mac, "%s.%s.", headers.ID, headers.Timestamp)
	mac.Write(payload)
	expected := mac.Sum(nil)

	valid := false
	for _, entry := range strings.Fields(headers.Signature) {
		version, sig, found := strings.Cut(entry, ",")
		if !found || version != "v1" {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(sig)
		if err != nil {
			continue
		}
		if subtle.ConstantTimeCompare(decoded, expected) == 1 {
			valid = true
		}
	}
	if !valid {
		return event, ErrSignatureMismatch
	}

	if err := json.Unmarshal(payload, &event); err != nil {
		return event, fmt.Errorf("failed to parse verified webhook payload: %w", err)
	}
	return event, nil
}

// SignPayload produces valid svix headers for the payload. Test helper.
func SignPayload(payload []byte, id, secret string, at time.Time) SignatureHeaders {
	key, _ := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, "whsec_"))
	timestamp := strconv.FormatInt(at.Unix(), 10)

	mac := hmac.New(sha256.New, key)
	fmt.Fprintf(mac, "%s.%s.", id, timestamp)
	mac.Write(payload)

	return SignatureHeaders{
		ID:        id,
		Timestamp: timestamp,
		Signature: "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil)),
	}
}
