package auth

import (
	"testing"
	"time"

	chat_errors "cipher-chat/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestTokenVerifier_RoundTrip(t *testing.T) {
	req := require.New(t)
	v := NewTokenVerifier("secret")
	id := uuid.New()

	token, err := v.Issue(id, time.Minute)
	req.NoError(err)

	got, err := v.UserID(token)
	req.NoError(err)
	req.Equal(id, got)
}

func TestTokenVerifier_Rejects(t *testing.T) {
	v := NewTokenVerifier("secret")
	id := uuid.New()

	expired, err := v.Issue(id, -time.Minute)
	require.NoError(t, err)

	otherKey, err := NewTokenVerifier("other").Issue(id, time.Minute)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, AccessClaims{UserID: id.String()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	notUUID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{UserID: "bob"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"expired", expired},
		{"wrong key", otherKey},
		{"alg none", none},
		{"subject not a uuid", notUUID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.UserID(tt.token)
			require.ErrorIs(t, err, chat_errors.ErrUnauthorized)
		})
	}
}
