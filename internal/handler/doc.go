// Package handler 按领域拆分的 HTTP Handler，各子包负责注册自己的路由。
//
// 本文件让 `swag init --dir ./internal/handler` 能把该目录识别为 Go 包。
package handler
