package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/foodcart-backend/internal/pkg/auth"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestValidateAccessToken(t *testing.T) {
	manager := auth.NewJWTManager(secret, "accounts")

	token, err := manager.GenerateAccessToken("user-1", "ada@example.com", time.Minute)
	require.NoError(t, err)

	claims, err := manager.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestValidateAccessToken_rejects(t *testing.T) {
	manager := auth.NewJWTManager(secret, "accounts")

	expired, err := manager.GenerateAccessToken("user-1", "", -time.Minute)
	require.NoError(t, err)

	otherIssuer, err := auth.NewJWTManager(secret, "elsewhere").GenerateAccessToken("user-1", "", time.Minute)
	require.NoError(t, err)

	otherSecret, err := auth.NewJWTManager("ffffffffffffffffffffffffffffffff", "accounts").GenerateAccessToken("user-1", "", time.Minute)
	require.NoError(t, err)

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{
		UserID:    "user-1",
		TokenType: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "accounts",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	refreshToken, err := refresh.SignedString([]byte(secret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "expired", token: expired},
		{name: "wrong issuer", token: otherIssuer},
		{name: "wrong secret", token: otherSecret},
		{name: "refresh token", token: refreshToken},
		{name: "garbage", token: "not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manager.ValidateAccessToken(tt.token)
			require.Error(t, err)
		})
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", auth.ExtractTokenFromHeader("Bearer abc"))
	assert.Empty(t, auth.ExtractTokenFromHeader("Basic abc"))
	assert.Empty(t, auth.ExtractTokenFromHeader(""))
}
