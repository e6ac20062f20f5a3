package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	tok, err := IssueToken("s3cret", "bedside", time.Hour, time.Now())
	require.NoError(t, err)

	sub, err := ParseToken("s3cret", tok)
	require.NoError(t, err)
	assert.Equal(t, "bedside", sub)
}

func TestParseRejects(t *testing.T) {
	good, err := IssueToken("s3cret", "bedside", time.Hour, time.Now())
	require.NoError(t, err)
	expired, err := IssueToken("s3cret", "bedside", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{"wrong secret", "other", good},
		{"expired", "s3cret", expired},
		{"garbage", "s3cret", "not.a.token"},
		{"empty", "s3cret", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.secret, tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestNoExpiry(t *testing.T) {
	tok, err := IssueToken("s3cret", "kiosk", 0, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	_, err = ParseToken("s3cret", tok)
	assert.NoError(t, err)
}

func TestIssueRequiresSecret(t *testing.T) {
	_, err := IssueToken("", "x", time.Hour, time.Now())
	assert.Error(t, err)
}
