package clerk

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clerkTestSecret = "whsec_" + base64.StdEncoding.EncodeToString([]byte("clerk-signing-key"))

var userCreatedPayload = []byte(`{
	"type": "user.created",
	"data": {
		"id": "user_abc",
		"first_name": "Ada",
		"last_name": "Lovelace",
		"image_url": "https://img.clerk.com/ada.png",
		"email_addresses": [{"email_address": "ada@example.com"}]
	}
}`)

func TestVerifyAndParseValid(t *testing.T) {
	headers := SignPayload(userCreatedPayload, "msg_1", clerkTestSecret, time.Now())

	event, err := VerifyAndParse(userCreatedPayload, headers, clerkTestSecret)
	require.NoError(t, err)
	assert.Equal(t, EventUserCreated, event.Type)
	assert.Equal(t, "user_abc", event.Data.ID)
	assert.Equal(t, "Ada Lovelace", event.Data.FullName())
	assert.Equal(t, "ada@example.com", event.Data.PrimaryEmail())
}

func TestVerifyAndParseWrongSecret(t *testing.T) {
	otherSecret := "whsec_" + base64.StdEncoding.EncodeToString([]byte("some-other-key"))
	headers := SignPayload(userCreatedPayload, "msg_1", otherSecret, time.Now())

	_, err := VerifyAndParse(userCreatedPayload, headers, clerkTestSecret)
	assert.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestVerifyAndParseTamperedPayload(t *testing.T) {
	headers := SignPayload(userCreatedPayload, "msg_1", clerkTestSecret, time.Now())

	tampered := append([]byte(nil), userCreatedPayload...)
	tampered[len(tampered)-2] = ' '
	_, err := VerifyAndParse(tampered, headers, clerkTestSecret)
	assert.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestVerifyAndParseMissingHeaders(t *testing.T) {
	headers := SignPayload(userCreatedPayload, "msg_1", clerkTestSecret, time.Now())

	for _, h := range []SignatureHeaders{
		{},
		{ID: headers.ID, Timestamp: headers.Timestamp},
		{ID: headers.ID, Signature: headers.Signature},
		{Timestamp: headers.Timestamp, Signature: headers.Signature},
	} {
		_, err := VerifyAndParse(userCreatedPayload, h, clerkTestSecret)
		assert.ErrorIs(t, err, ErrMissingHeaders)
	}
}

func TestVerifyAndParseStaleTimestamp(t *testing.T) {
	headers := SignPayload(userCreatedPayload, "msg_1", clerkTestSecret, time.Now().Add(-time.Hour))

	_, err := VerifyAndParse(userCreatedPayload, headers, clerkTestSecret)
	assert.ErrorIs(t, err, ErrTimestampTolerance)
}

func TestVerifyAndParseMalformedSecret(t *testing.T) {
	headers := SignPayload(userCreatedPayload, "msg_1", clerkTestSecret, time.Now())

	_, err := VerifyAndParse(userCreatedPayload, headers, "whsec_%%%not-base64%%%")
	assert.ErrorIs(t, err, ErrInvalidSecret)
}

func TestVerifyAndParseMissingSecret(t *testing.T) {
	headers := SignPayload(userCreatedPayload, "msg_1", clerkTestSecret, time.Now())

	_, err := VerifyAndParse(userCreatedPayload, headers, "")
	assert.ErrorIs(t, err, ErrMissingSecret)
}
