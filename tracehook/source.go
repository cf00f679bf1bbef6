// Package tracehook 提供进程内的 trace-hook 源.
//
// Source 从 JSON 行事件流中解码 entry/exit 事件并同步调用 Hooks，
// 同时维护调用栈，以便在出口事件上附加对应的入口记录.
package tracehook

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Tsukikage7/tracefwd/calltrace"
	"github.com/Tsukikage7/tracefwd/logger"
)

// 事件类型.
const (
	EventEntry = "entry"
	EventExit  = "exit"
)

// maxLineSize 单行事件的最大长度.
const maxLineSize = 4 << 20

// Hooks 入口/出口回调.
type Hooks interface {
	OnEntry(rec *calltrace.Record)
	OnExit(rec *calltrace.Record)
}

// Event 事件流中的一行.
type Event struct {
	Event  string            `json:"event"`
	Record *calltrace.Record `json:"record"`
}

// Source 事件流驱动的 trace-hook 源，非并发安全.
type Source struct {
	hooks     Hooks
	log       logger.Logger
	entryData bool
	stack     []*calltrace.Record
}

// NewSource 创建 Source，必需设置 hooks、logger，否则会 panic.
func NewSource(hooks Hooks, opts ...Option) *Source {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if hooks == nil {
		panic("tracehook: 必须设置 hooks")
	}
	if o.logger == nil {
		panic("tracehook: 必须设置 logger")
	}

	return &Source{
		hooks:     hooks,
		log:       o.logger,
		entryData: o.entryData,
	}
}

// Depth 返回当前未匹配出口的入口数.
func (s *Source) Depth() int {
	return len(s.stack)
}

// Replay 把修正后的入口记录重新交给 OnEntry，不改变调用栈.
func (s *Source) Replay(rec *calltrace.Record) {
	s.hooks.OnEntry(rec)
}

// Entry 分发一次入口事件.
func (s *Source) Entry(rec *calltrace.Record) {
	s.stack = append(s.stack, rec)
	s.hooks.OnEntry(rec)
}

// Exit 分发一次出口事件，弹出最近的入口记录.
func (s *Source) Exit(rec *calltrace.Record) {
	var entry *calltrace.Record
	if n := len(s.stack); n > 0 {
		entry = s.stack[n-1]
		s.stack = s.stack[:n-1]
	}

	if s.entryData && rec.EntryData == nil {
		rec.EntryData = entry
	}
	s.hooks.OnExit(rec)
}

// Dispatch 分发单个事件.
func (s *Source) Dispatch(ev *Event) error {
	if ev.Record == nil {
		return fmt.Errorf("%w: missing record", ErrDecodeEvent)
	}

	switch ev.Event {
	case EventEntry:
		s.Entry(ev.Record)
	case EventExit:
		s.Exit(ev.Record)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Event)
	}
	return nil
}

// Run 逐行读取事件并分发，直到 EOF 或 ctx 结束.
// 无法解析的行记录警告后跳过. 返回成功分发的事件数.
//
// 读取在独立 goroutine 中进行，ctx 结束时 Run 立即返回，
// 不等待阻塞中的 Read（例如空闲的 stdin）. 回调始终在调用方 goroutine 上执行.
func (s *Source) Run(ctx context.Context, r io.Reader) (int, error) {
	stop := make(chan struct{})
	defer close(stop)

	lines, readErr := scanLines(r, stop)

	dispatched := 0
	lineNo := 0
	for {
		if err := ctx.Err(); err != nil {
			return dispatched, err
		}

		var line []byte
		var ok bool
		select {
		case <-ctx.Done():
			return dispatched, ctx.Err()
		case line, ok = <-lines:
		}
		if !ok {
			break
		}
		lineNo++

		if len(line) == 0 {
			continue
		}

		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			s.log.With(logger.Int("line", lineNo), logger.Err(err)).Warn("skip malformed event")
			continue
		}
		if err := s.Dispatch(&ev); err != nil {
			s.log.With(logger.Int("line", lineNo), logger.Err(err)).Warn("skip event")
			continue
		}
		dispatched++
	}

	if err := <-readErr; err != nil {
		return dispatched, fmt.Errorf("%w: %v", ErrReadStream, err)
	}
	return dispatched, nil
}

// scanLines 在后台按行读取 r. lines 关闭前 readErr 已写入扫描结果；
// stop 关闭后读取 goroutine 在下一行处退出.
func scanLines(r io.Reader, stop <-chan struct{}) (<-chan []byte, <-chan error) {
	lines := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), maxLineSize)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-stop:
				return
			}
		}
		readErr <- scanner.Err()
	}()

	return lines, readErr
}
