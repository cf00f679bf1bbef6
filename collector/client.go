// Package collector 将调用追踪记录以 JSON POST 方式发送到本地 collector.
//
// 提交是 fire-and-forget 的：Forward 立即返回 Submission 句柄，
// 请求在独立 goroutine 中完成，失败只记录日志，不重试、不排队.
package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/Tsukikage7/tracefwd/calltrace"
	"github.com/Tsukikage7/tracefwd/logger"
	"github.com/Tsukikage7/tracefwd/recovery"
)

// DefaultEndpoint 默认 collector 地址.
const DefaultEndpoint = "http://localhost:9596"

// RequestIDHeader 每次提交携带的请求 ID 头.
const RequestIDHeader = "X-Request-Id"

const tracerName = "github.com/Tsukikage7/tracefwd/collector"

// Client collector HTTP 客户端.
type Client struct {
	httpClient *http.Client
	opts       *options
	endpoint   string
	tracer     trace.Tracer

	wg       sync.WaitGroup
	inFlight atomic.Int64
}

// New 创建 collector 客户端，必需设置 logger，否则会 panic.
func New(opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		panic("collector: 必须设置 logger")
	}

	u, err := url.Parse(o.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEndpoint, o.endpoint)
	}

	transport := o.transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout:   o.timeout,
			Transport: transport,
		},
		opts:     o,
		endpoint: u.String(),
		tracer:   o.tracerProvider.Tracer(tracerName),
	}

	o.logger.With(
		logger.String("name", o.name),
		logger.String("endpoint", c.endpoint),
	).Info("[Collector] 客户端初始化成功")

	return c, nil
}

// Endpoint 返回 collector 地址.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// InFlight 返回尚未完成的提交数.
func (c *Client) InFlight() int {
	return int(c.inFlight.Load())
}

// Forward 序列化记录并异步 POST 到 collector.
//
// 记录在调用时同步序列化，之后对记录的修改不会影响本次提交.
// ctx 只用于传递 trace 信息，取消 ctx 不会取消提交.
func (c *Client) Forward(ctx context.Context, rec *calltrace.Record) *Submission {
	sub := newSubmission(uuid.NewString())

	body, err := json.Marshal(rec)
	if err != nil {
		c.opts.logger.Errorf("error: %v", err)
		c.recordFailure("marshal")
		sub.finish(0, fmt.Errorf("%w: %v", ErrMarshalRecord, err))
		return sub
	}

	method := rec.Method
	ctx = context.WithoutCancel(ctx)

	c.wg.Add(1)
	c.trackInFlight(1)
	go func() {
		defer c.wg.Done()
		defer c.trackInFlight(-1)
		err := recovery.Do("collector.send", func() {
			c.send(ctx, sub, method, body)
		}, recovery.WithLogger(c.opts.logger))
		if err != nil {
			c.recordFailure("panic")
			sub.finish(0, err)
		}
	}()

	return sub
}

// send 执行一次 POST 并完成 submission.
func (c *Client) send(ctx context.Context, sub *Submission, method string, body []byte) {
	ctx, span := c.tracer.Start(ctx, "collector.Forward",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("tracefwd.method", method),
			attribute.String("tracefwd.request_id", sub.id),
			attribute.Int("http.request.body.size", len(body)),
		),
	)
	defer span.End()

	log := c.opts.logger.WithContext(withTraceIDs(ctx, span)).With(
		logger.String("requestId", sub.id),
		logger.String("method", method),
	)

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		c.fail(log, span, sub, "request", fmt.Errorf("%w: %v", ErrRequestFailed, err))
		return
	}

	for key, value := range c.opts.headers {
		req.Header.Set(key, value)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, sub.id)
	c.opts.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.fail(log, span, sub, "transport", fmt.Errorf("%w: %v", ErrRequestFailed, err))
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	duration := time.Since(start)
	if c.opts.metrics != nil {
		c.opts.metrics.RecordSubmission(strconv.Itoa(resp.StatusCode), duration, float64(len(body)))
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		// 有响应但状态码异常，不视为传输错误
		log.Debugf("collector responded %d in %s", resp.StatusCode, duration)
		span.SetStatus(codes.Error, resp.Status)
		sub.finish(resp.StatusCode, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode))
		return
	}

	sub.finish(resp.StatusCode, nil)
}

// fail 记录传输失败.
func (c *Client) fail(log logger.Logger, span trace.Span, sub *Submission, reason string, err error) {
	log.Errorf("error: %v", err)
	span.RecordError(err)
	span.SetStatus(codes.Error, reason)
	c.recordFailure(reason)
	sub.finish(0, err)
}

func (c *Client) recordFailure(reason string) {
	if c.opts.metrics != nil {
		c.opts.metrics.RecordFailure(reason)
	}
}

func (c *Client) trackInFlight(delta int64) {
	n := c.inFlight.Add(delta)
	if c.opts.metrics != nil {
		c.opts.metrics.SetInFlight(int(n))
	}
}

// Close 等待所有在途提交完成或 ctx 结束.
func (c *Client) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// withTraceIDs 把 span 的 trace 信息写入 context，供 logger 使用.
func withTraceIDs(ctx context.Context, span trace.Span) context.Context {
	sc := span.SpanContext()
	if !sc.IsValid() {
		return ctx
	}
	ctx = logger.ContextWithTraceID(ctx, sc.TraceID().String())
	return logger.ContextWithSpanID(ctx, sc.SpanID().String())
}
