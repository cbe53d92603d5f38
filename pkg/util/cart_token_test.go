package util

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-cart-tokens"

func TestNewCartSession(t *testing.T) {
	tok, err := NewCartSession(testSecret, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Token)
	_, err = uuid.Parse(tok.SessionID)
	assert.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, 5*time.Second)

	other, err := NewCartSession(testSecret, time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, tok.SessionID, other.SessionID)
}

func TestValidateCartToken(t *testing.T) {
	valid, err := GenerateCartToken("session-1", testSecret, time.Hour)
	require.NoError(t, err)
	expired, err := GenerateCartToken("session-1", testSecret, -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		secret  string
		wantErr error
	}{
		{name: "valid token", token: valid.Token, secret: testSecret},
		{name: "wrong secret", token: valid.Token, secret: "other", wantErr: ErrInvalidToken},
		{name: "expired token", token: expired.Token, secret: testSecret, wantErr: ErrExpiredToken},
		{name: "garbage", token: "not-a-token", secret: testSecret, wantErr: ErrInvalidToken},
		{name: "empty", token: "", secret: testSecret, wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateCartToken(tt.token, tt.secret)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "session-1", claims.SessionID)
		})
	}
}

func TestGenerateCartToken_RequiresSessionID(t *testing.T) {
	_, err := GenerateCartToken("", testSecret, time.Hour)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
