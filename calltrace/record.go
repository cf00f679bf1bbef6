// Package calltrace 定义调用追踪记录的数据模型.
//
// 记录由 trace-hook 源在每次函数调用时创建，经 formatter 就地修改后
// 序列化为 JSON 发送到 collector，之后即被丢弃.
package calltrace

import "encoding/json"

// Method 取值.
const (
	MethodStart = "start"
	MethodStop  = "stop"
)

// TimedOutMessage 错误模式下补发入口记录时写入的异常信息.
const TimedOutMessage = "Function timed out"

// Record 单次函数调用的追踪记录.
//
// 序列化保持 trace-hook 源发来的形状：解码时出现过的键即使为零值
// 也会原样写回（例如 "args":[]、"retLine":0），未建模的键保存在 Extra 中.
type Record struct {
	Name        string            `json:"name"`
	File        string            `json:"file"`
	Line        int               `json:"line"`
	Args        []json.RawMessage `json:"args"`
	Stack       []json.RawMessage `json:"stack"`
	Exception   *Exception        `json:"exception"`
	RetLine     int               `json:"retLine"`
	Span        float64           `json:"span"`
	ReturnValue json.RawMessage   `json:"returnValue,omitempty"`
	Method      string            `json:"method"`

	// EntryData 出口记录对应的入口记录，仅在错误模式下由 trace-hook 源填充.
	EntryData *Record `json:"entryData,omitempty"`

	// Extra 未建模的字段，按原始 JSON 转发.
	Extra map[string]json.RawMessage `json:"-"`

	// present 解码时出现过的已建模键.
	present map[string]bool
}

// recordFields 与 Record 的 json 标签一致.
var recordFields = map[string]struct{}{
	"name": {}, "file": {}, "line": {}, "args": {}, "stack": {}, "exception": {},
	"retLine": {}, "span": {}, "returnValue": {}, "method": {}, "entryData": {},
}

// UnmarshalJSON 解码已建模字段，并记录出现过的键与未知字段.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = Record(p)
	r.present = make(map[string]bool, len(raw))
	for key, value := range raw {
		if _, known := recordFields[key]; known {
			r.present[key] = true
			continue
		}
		if r.Extra == nil {
			r.Extra = make(map[string]json.RawMessage)
		}
		r.Extra[key] = value
	}
	return nil
}

// MarshalJSON 输出已设置或解码时出现过的字段，再合并 Extra.
// line 与 span 总是输出.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(r.Extra)+len(recordFields))
	for key, value := range r.Extra {
		out[key] = value
	}

	fields := []struct {
		key   string
		value any
		set   bool
	}{
		{"name", r.Name, r.Name != ""},
		{"file", r.File, r.File != ""},
		{"line", r.Line, true},
		{"args", r.Args, r.Args != nil},
		{"stack", r.Stack, r.Stack != nil},
		{"exception", r.Exception, r.Exception != nil},
		{"retLine", r.RetLine, r.RetLine != 0},
		{"span", r.Span, true},
		{"returnValue", r.ReturnValue, len(r.ReturnValue) > 0},
		{"method", r.Method, r.Method != ""},
		{"entryData", r.EntryData, r.EntryData != nil},
	}

	for _, f := range fields {
		if !f.set && !r.present[f.key] {
			continue
		}
		data, err := json.Marshal(f.value)
		if err != nil {
			return nil, err
		}
		out[f.key] = data
	}

	return json.Marshal(out)
}

// NormalizeException 将缺失的 exception 规范化为 false.
func (r *Record) NormalizeException() {
	if r.Exception == nil {
		r.Exception = False()
	}
}

// Raised 报告记录是否携带异常.
func (r *Record) Raised() bool {
	return r.Exception.Raised()
}

// HasReturnValue 报告出口记录是否带有返回值.
func (r *Record) HasReturnValue() bool {
	return len(r.ReturnValue) > 0 && string(r.ReturnValue) != "null"
}
