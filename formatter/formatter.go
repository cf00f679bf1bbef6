// Package formatter 实现调用追踪的 entry/exit 回调.
//
// Formatter 位于 trace-hook 源和 collector 之间：
// 就地修改收到的记录，在错误模式下过滤未抛出异常的记录，
// 然后把记录交给 Forwarder 异步发送.
//
// 基本用法:
//
//	fwd, _ := collector.New(collector.WithLogger(log))
//	var src *tracehook.Source
//	f := formatter.New(
//	    formatter.WithForwarder(fwd),
//	    formatter.WithLogger(log),
//	    formatter.WithOnlyError(true),
//	    formatter.WithReplay(func(r *calltrace.Record) { src.Replay(r) }),
//	)
//	src = tracehook.NewSource(f, tracehook.WithLogger(log), tracehook.WithEntryData(f.OnlyError()))
package formatter

import (
	"context"

	"github.com/Tsukikage7/tracefwd/calltrace"
	"github.com/Tsukikage7/tracefwd/collector"
	"github.com/Tsukikage7/tracefwd/logger"
	"github.com/Tsukikage7/tracefwd/metrics"
)

// Forwarder 把记录发送到 collector，必须立即返回.
type Forwarder interface {
	Forward(ctx context.Context, rec *calltrace.Record) *collector.Submission
}

// ReplayFunc trace-hook 源的重入函数，用于补发修正后的入口记录.
type ReplayFunc func(rec *calltrace.Record)

// Formatter 调用追踪格式化器.
type Formatter struct {
	onlyError bool
	forwarder Forwarder
	log       logger.Logger
	replay    ReplayFunc
	metrics   metrics.Collector
}

// New 创建 Formatter，必需设置 forwarder、logger，否则会 panic.
func New(opts ...Option) *Formatter {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if o.forwarder == nil {
		panic("formatter: 必须设置 forwarder")
	}
	if o.logger == nil {
		panic("formatter: 必须设置 logger")
	}

	f := &Formatter{
		onlyError: o.onlyError,
		forwarder: o.forwarder,
		log:       o.logger,
		replay:    o.replay,
		metrics:   o.metrics,
	}
	if f.replay == nil {
		f.replay = f.OnEntry
	}
	return f
}

// OnlyError 报告是否处于错误模式.
func (f *Formatter) OnlyError() bool {
	return f.onlyError
}

// OnEntry 处理函数入口记录.
func (f *Formatter) OnEntry(rec *calltrace.Record) {
	rec.Method = calltrace.MethodStart
	rec.Span = 0
	rec.NormalizeException()

	if f.onlyError && !rec.Raised() {
		f.record(rec.Method, metrics.OutcomeFiltered)
		return
	}

	f.forward(rec)
}

// OnExit 处理函数出口记录.
//
// 错误模式下会先把 EntryData 修正为超时异常并通过 replay 补发，
// 再发送出口记录；EntryData 缺失时只记录错误日志，两条都不发送.
func (f *Formatter) OnExit(rec *calltrace.Record) {
	rec.Method = calltrace.MethodStop
	rec.NormalizeException()

	if f.onlyError && !rec.Raised() {
		f.record(rec.Method, metrics.OutcomeFiltered)
		return
	}

	if f.onlyError {
		if rec.EntryData == nil {
			f.log.With(
				logger.String("name", rec.Name),
				logger.String("file", rec.File),
				logger.Int("line", rec.Line),
			).Error("Error")
			f.record(rec.Method, metrics.OutcomeDropped)
			return
		}

		rec.EntryData.Line = rec.Line
		rec.EntryData.Exception = calltrace.Message(calltrace.TimedOutMessage)
		f.replay(rec.EntryData)
	}

	f.forward(rec)
}

// forward 交给 forwarder 发送，不等待结果.
func (f *Formatter) forward(rec *calltrace.Record) {
	f.forwarder.Forward(context.Background(), rec)
	f.record(rec.Method, metrics.OutcomeForwarded)
	f.log.Debugf("forwarded %s %s@%s:%d", rec.Method, rec.Name, rec.File, rec.Line)
}

func (f *Formatter) record(method, outcome string) {
	if f.metrics != nil {
		f.metrics.RecordHook(method, outcome)
	}
}
