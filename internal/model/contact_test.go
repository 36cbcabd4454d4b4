package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeContactInput(t *testing.T) {
	in, err := DecodeContactInput([]byte(`{"fullName":" Jane ","email":"jane@x.com","message":"Hi","extra":1}`))
	require.NoError(t, err)
	assert.Equal(t, ContactInput{FullName: " Jane ", Email: "jane@x.com", Message: "Hi"}, in)
}

func TestDecodeContactInput_NotAnObject(t *testing.T) {
	for _, body := range []string{``, `null`, `[]`, `"hello"`, `42`, `{`, `{"fullName":}`} {
		t.Run(body, func(t *testing.T) {
			_, err := DecodeContactInput([]byte(body))
			assert.ErrorIs(t, err, ErrInvalidPayload)
		})
	}
}

func TestDecodeContactInput_NonStringFieldsAreEmpty(t *testing.T) {
	in, err := DecodeContactInput([]byte(`{"fullName":5,"email":null,"message":["x"],"subject":true}`))
	require.NoError(t, err)
	assert.Equal(t, ContactInput{}, in)
}

func TestDefaultSubject(t *testing.T) {
	assert.Equal(t, "Inquiry - Jane Doe", DefaultSubject("Jane Doe"))
}

func TestSubmissionState(t *testing.T) {
	assert.True(t, StateIdle.CanTransition(StateValidating))
	assert.True(t, StateValidating.CanTransition(StateRejected))
	assert.True(t, StateValidating.CanTransition(StateSending))
	assert.True(t, StateSending.CanTransition(StateSent))
	assert.True(t, StateSending.CanTransition(StateFailed))

	assert.False(t, StateFailed.CanTransition(StateSending), "failed submissions are not retried")
	assert.False(t, StateIdle.CanTransition(StateSending))

	for _, s := range []SubmissionState{StateRejected, StateSent, StateFailed} {
		assert.True(t, s.Terminal(), s)
	}
	assert.False(t, StateSending.Terminal())
}
