package collector

import "errors"

// 错误定义.
var (
	// ErrInvalidEndpoint collector 地址无效.
	ErrInvalidEndpoint = errors.New("collector: 地址无效")

	// ErrMarshalRecord 记录序列化失败.
	ErrMarshalRecord = errors.New("collector: 记录序列化失败")

	// ErrRequestFailed 请求创建或发送失败.
	ErrRequestFailed = errors.New("collector: 请求失败")

	// ErrUnexpectedStatus collector 返回非 200 状态码.
	ErrUnexpectedStatus = errors.New("collector: 非预期的响应状态码")
)
