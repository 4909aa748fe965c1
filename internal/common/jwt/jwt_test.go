// Package jwt JWT令牌管理单元测试
package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestManager() *Manager {
	return NewManager(&Config{
		Secret:            "test-secret-key-for-jwt-token-signing",
		AccessExpireTime:  15 * time.Minute,
		RefreshExpireTime: 7 * 24 * time.Hour,
		Issuer:            "test-issuer",
	})
}

// ==================== GenerateTokenPair 测试 ====================

func TestManager_GenerateTokenPair(t *testing.T) {
	manager := setupTestManager()

	tests := []struct {
		name   string
		userID int64
		email  string
		role   string
	}{
		{"普通用户", 1, "guest@example.com", "user"},
		{"业主", 2, "owner@example.com", "owner"},
		{"管理员", 3, "admin@example.com", "admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, err := manager.GenerateTokenPair(tt.userID, tt.email, tt.role)
			require.NoError(t, err)
			assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
			assert.Greater(t, pair.ExpiresAt, time.Now().Unix())

			claims, err := manager.ParseAccessToken(pair.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, tt.userID, claims.UserID)
			assert.Equal(t, tt.email, claims.Email)
			assert.Equal(t, tt.role, claims.Role)
			assert.Equal(t, TokenTypeAccess, claims.TokenType)
			assert.NotEmpty(t, claims.ID)
			assert.Equal(t, "test-issuer", claims.Issuer)
		})
	}
}

// ==================== ParseToken 测试 ====================

func TestManager_ParseToken_Errors(t *testing.T) {
	manager := setupTestManager()

	t.Run("格式错误", func(t *testing.T) {
		_, err := manager.ParseToken("not-a-jwt")
		assert.ErrorIs(t, err, ErrTokenMalformed)
	})

	t.Run("签名不匹配", func(t *testing.T) {
		other := NewManager(&Config{Secret: "other", AccessExpireTime: time.Minute, RefreshExpireTime: time.Hour})
		pair, err := other.GenerateTokenPair(1, "a@b.com", "user")
		require.NoError(t, err)

		_, err = manager.ParseToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("已过期", func(t *testing.T) {
		expired := NewManager(&Config{Secret: "test-secret-key-for-jwt-token-signing", AccessExpireTime: -time.Minute, RefreshExpireTime: time.Hour})
		pair, err := expired.GenerateTokenPair(1, "a@b.com", "user")
		require.NoError(t, err)

		_, err = manager.ParseToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})
}

func TestManager_ParseAccessToken_RejectsRefresh(t *testing.T) {
	manager := setupTestManager()
	pair, err := manager.GenerateTokenPair(1, "a@b.com", "user")
	require.NoError(t, err)

	_, err = manager.ParseAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenWrongType)
}

// ==================== RefreshToken 测试 ====================

func TestManager_RefreshToken(t *testing.T) {
	manager := setupTestManager()
	pair, err := manager.GenerateTokenPair(9, "a@b.com", "admin")
	require.NoError(t, err)

	t.Run("刷新成功", func(t *testing.T) {
		newPair, err := manager.RefreshToken(pair.RefreshToken)
		require.NoError(t, err)

		claims, err := manager.ParseAccessToken(newPair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, int64(9), claims.UserID)
		assert.Equal(t, "admin", claims.Role)
	})

	t.Run("访问令牌不能刷新", func(t *testing.T) {
		_, err := manager.RefreshToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrTokenWrongType)
	})
}
