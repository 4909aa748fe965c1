// Package migrations 内嵌 goose SQL 迁移脚本
package migrations

import "embed"

// FS 全部迁移脚本
//
//go:embed *.sql
var FS embed.FS
