package ws

import (
	"fmt"
	"testing"

	"chat-hub/errors"

	"github.com/stretchr/testify/require"
)

func TestCodeOf_TaxonomyMapping(t *testing.T) {
	req := require.New(t)

	tests := []struct {
		err  error
		code string
	}{
		{errors.ErrUnknownConnection, "unknown_connection"},
		{errors.ErrDuplicateConnection, "duplicate_connection"},
		{errors.ErrInvalidUsername, "invalid_username"},
		{errors.ErrAlreadyNamed, "already_named"},
		{errors.ErrAnonymousConnection, "anonymous_connection"},
		{errors.ErrUnknownSender, "unknown_sender"},
		{errors.ErrEmptyBody, "empty_body"},
		{errors.ErrInvalidPayload, "invalid_payload"},
		{fmt.Errorf("anything else"), "internal"},
	}

	for _, tt := range tests {
		req.Equal(tt.code, codeOf(tt.err), "err=%v", tt.err)
	}
}

func TestCodeOf_WrappedErrors(t *testing.T) {
	req := require.New(t)

	// Given a taxonomy error wrapped with context
	err := fmt.Errorf("%w: field Username is required", errors.ErrInvalidPayload)

	// Then the code is resolved through the chain
	req.Equal("invalid_payload", codeOf(err))
}

func TestDecode_MissingData(t *testing.T) {
	req := require.New(t)

	// When a frame arrives without a data object
	var v struct{}
	err := decode(nil, &v)

	// Then it is an invalid payload, not a panic
	req.ErrorIs(err, errors.ErrInvalidPayload)
}

func TestDecode_MalformedData(t *testing.T) {
	req := require.New(t)

	var v struct {
		Room string `json:"room"`
	}
	err := decode([]byte(`{"room": 42}`), &v)
	req.ErrorIs(err, errors.ErrInvalidPayload)

	req.NoError(decode([]byte(`{"room": "tech"}`), &v))
	req.Equal("tech", v.Room)
}
