// Package crypto 提供密码哈希、签名与脱敏工具
package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// 预定义错误
var (
	ErrEmptyPassword = errors.New("password is empty")
	ErrEmptyKey      = errors.New("signing key is empty")
)

// PasswordHasher bcrypt 密码哈希
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher 创建哈希器，cost 非法时使用默认值
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash 对密码进行哈希
func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify 验证密码
func (h *PasswordHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// HashPassword 使用默认强度哈希
func HashPassword(password string) (string, error) {
	return NewPasswordHasher(bcrypt.DefaultCost).Hash(password)
}

// VerifyPassword 验证密码
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Signer HMAC-SHA256 签名，用于入住凭证
type Signer struct {
	key []byte
}

// NewSigner 创建签名器
func NewSigner(key string) (*Signer, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	return &Signer{key: []byte(key)}, nil
}

// Sign 返回 payload 的十六进制签名（截取前 16 位）
func (s *Signer) Sign(payload string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))[:16]
}

// Verify 校验签名
func (s *Signer) Verify(payload, signature string) bool {
	return hmac.Equal([]byte(s.Sign(payload)), []byte(strings.ToLower(signature)))
}

// GenerateRandomString 生成随机字符串
func GenerateRandomString(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes)[:length], nil
}

// MaskPhone 电话脱敏，保留末 4 位
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	keep := 3
	if strings.HasPrefix(phone, "+") {
		keep = 4
	}
	if len(phone) <= keep+4 {
		return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
	}
	return phone[:keep] + strings.Repeat("*", len(phone)-keep-4) + phone[len(phone)-4:]
}

// MaskEmail 邮箱脱敏
func MaskEmail(email string) string {
	i := strings.IndexByte(email, '@')
	if i <= 2 {
		return email
	}
	return email[:2] + "***" + email[i:]
}
