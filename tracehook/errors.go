package tracehook

import "errors"

// 错误定义.
var (
	// ErrUnknownEvent 未知事件类型.
	ErrUnknownEvent = errors.New("tracehook: 未知事件类型")

	// ErrDecodeEvent 事件解析失败.
	ErrDecodeEvent = errors.New("tracehook: 事件解析失败")

	// ErrReadStream 读取事件流失败.
	ErrReadStream = errors.New("tracehook: 读取事件流失败")
)
