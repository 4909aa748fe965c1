// Package qrcode 生成预订入住凭证二维码
package qrcode

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/skip2/go-qrcode"
)

// RecoveryLevel 纠错级别
type RecoveryLevel int

const (
	// Low 7% 纠错
	Low RecoveryLevel = iota
	// Medium 15% 纠错
	Medium
	// High 25% 纠错
	High
)

// VoucherScheme 凭证内容前缀
const VoucherScheme = "hotelbooking://voucher/"

// ErrInvalidVoucher 凭证内容无法解析
var ErrInvalidVoucher = errors.New("invalid voucher content")

// Generator 二维码生成器
type Generator struct {
	size          int
	recoveryLevel RecoveryLevel
}

// Option 生成器选项
type Option func(*Generator)

// WithSize 设置二维码尺寸（像素）
func WithSize(size int) Option {
	return func(g *Generator) {
		g.size = size
	}
}

// WithRecoveryLevel 设置纠错级别
func WithRecoveryLevel(level RecoveryLevel) Option {
	return func(g *Generator) {
		g.recoveryLevel = level
	}
}

// NewGenerator 创建二维码生成器
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		size:          256,
		recoveryLevel: Medium,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) level() qrcode.RecoveryLevel {
	switch g.recoveryLevel {
	case Low:
		return qrcode.Low
	case High:
		return qrcode.High
	default:
		return qrcode.Medium
	}
}

// GeneratePNG 生成 PNG 格式二维码
func (g *Generator) GeneratePNG(content string) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("二维码内容为空")
	}
	return qrcode.Encode(content, g.level(), g.size)
}

// GenerateDataURL 生成 Data URL 格式的二维码
func (g *Generator) GenerateDataURL(content string) (string, error) {
	data, err := g.GeneratePNG(content)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}

// Voucher 入住凭证
type Voucher struct {
	BookingID int64
	CheckIn   string
	Signature string
}

// Payload 参与签名的内容
func (v Voucher) Payload() string {
	return fmt.Sprintf("%d:%s", v.BookingID, v.CheckIn)
}

// Content 二维码承载的文本
func (v Voucher) Content() string {
	return fmt.Sprintf("%s%d/%s/%s", VoucherScheme, v.BookingID, v.CheckIn, v.Signature)
}

// ParseVoucher 解析二维码文本
func ParseVoucher(content string) (Voucher, error) {
	rest, ok := strings.CutPrefix(content, VoucherScheme)
	if !ok {
		return Voucher{}, ErrInvalidVoucher
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return Voucher{}, ErrInvalidVoucher
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		return Voucher{}, ErrInvalidVoucher
	}
	return Voucher{BookingID: id, CheckIn: parts[1], Signature: parts[2]}, nil
}
