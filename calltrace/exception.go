package calltrace

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Exception 记录的异常标记，取值为布尔值或一条异常信息.
type Exception struct {
	raised  bool
	message string
}

// False 返回未抛出异常的标记.
func False() *Exception {
	return &Exception{}
}

// True 返回已抛出异常的标记.
func True() *Exception {
	return &Exception{raised: true}
}

// Message 返回携带异常信息的标记，空字符串视为未抛出异常.
func Message(msg string) *Exception {
	return &Exception{raised: msg != "", message: msg}
}

// Raised 报告是否抛出了异常，nil 视为未抛出.
func (e *Exception) Raised() bool {
	return e != nil && e.raised
}

// Text 返回异常信息，布尔标记返回空串.
func (e *Exception) Text() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Exception) String() string {
	if e == nil {
		return "<nil>"
	}
	if e.message != "" {
		return e.message
	}
	return fmt.Sprint(e.raised)
}

// MarshalJSON 有异常信息时编码为字符串，否则编码为布尔值.
func (e Exception) MarshalJSON() ([]byte, error) {
	if e.message != "" {
		return json.Marshal(e.message)
	}
	return json.Marshal(e.raised)
}

// UnmarshalJSON 接受布尔值、字符串或 null.
func (e *Exception) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*e = Exception{}
		return nil
	}

	var flag bool
	if err := json.Unmarshal(data, &flag); err == nil {
		*e = Exception{raised: flag}
		return nil
	}

	var msg string
	if err := json.Unmarshal(data, &msg); err == nil {
		*e = *Message(msg)
		return nil
	}

	return fmt.Errorf("calltrace: exception must be a boolean or string, got %s", data)
}
