package stripe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test_secret"

var testPayload = []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1","metadata":{"purchaseId":"p1"}}}}`)

func TestConstructEventValidSignature(t *testing.T) {
	header := SignPayload(testPayload, testSecret, time.Now())

	event, err := ConstructEvent(testPayload, header, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, EventCheckoutSessionCompleted, event.Type)
	assert.Equal(t, testPayload, event.Raw)
}

func TestConstructEventTamperedPayload(t *testing.T) {
	header := SignPayload(testPayload, testSecret, time.Now())

	tampered := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1","metadata":{"purchaseId":"p2"}}}}`)
	_, err := ConstructEvent(tampered, header, testSecret)
	assert.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestConstructEventWrongSecret(t *testing.T) {
	header := SignPayload(testPayload, "whsec_other_secret", time.Now())

	_, err := ConstructEvent(testPayload, header, testSecret)
	assert.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestConstructEventStaleTimestamp(t *testing.T) {
	header := SignPayload(testPayload, testSecret, time.Now().Add(-10*time.Minute))

	_, err := ConstructEvent(testPayload, header, testSecret)
	assert.ErrorIs(t, err, ErrTimestampTolerance)
}

func TestConstructEventMalformedHeader(t *testing.T) {
	for _, header := range []string{
		"",
		"garbage",
		"t=notanumber,v1=abcd",
		"v1=abcd",          // no timestamp
		"t=1700000000",     // no signature
		"t=1700000000,abc", // pair without '='
	} {
		_, err := ConstructEvent(testPayload, header, testSecret)
		assert.ErrorIs(t, err, ErrInvalidHeader, "header %q", header)
	}
}

func TestConstructEventMissingSecret(t *testing.T) {
	header := SignPayload(testPayload, testSecret, time.Now())

	_, err := ConstructEvent(testPayload, header, "")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestConstructEventIgnoresUnknownSchemes(t *testing.T) {
	header := SignPayload(testPayload, testSecret, time.Now()) + ",v0=deadbeef"

	event, err := ConstructEvent(testPayload, header, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
}

func TestConstructEventVerifiesBeforeParsing(t *testing.T) {
	notJSON := []byte("this is not json")

	// Unsigned garbage fails on the signature, never reaching the parser.
	_, err := ConstructEvent(notJSON, SignPayload(testPayload, testSecret, time.Now()), testSecret)
	assert.ErrorIs(t, err, ErrSignatureMismatch)

	// Correctly signed garbage fails only at the parse step.
	_, err = ConstructEvent(notJSON, SignPayload(notJSON, testSecret, time.Now()), testSecret)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSignatureMismatch)
}
