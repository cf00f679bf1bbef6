package server

import "errors"

// 预定义错误.
var (
	// ErrServerRunning 服务器正在运行.
	ErrServerRunning = errors.New("server: server is already running")

	// ErrAddrEmpty 地址为空.
	ErrAddrEmpty = errors.New("server: address is empty")

	// ErrNilHandler 处理器为空.
	ErrNilHandler = errors.New("server: handler is nil")
)
