package collector

import "sync"

// Submission 一次异步提交的句柄.
type Submission struct {
	id         string
	done       chan struct{}
	once       sync.Once
	statusCode int
	err        error
}

func newSubmission(id string) *Submission {
	return &Submission{
		id:   id,
		done: make(chan struct{}),
	}
}

// finish 只有第一次调用生效.
func (s *Submission) finish(statusCode int, err error) {
	s.once.Do(func() {
		s.statusCode = statusCode
		s.err = err
		close(s.done)
	})
}

// ID 返回随请求发送的 X-Request-Id.
func (s *Submission) ID() string {
	return s.id
}

// Done 在提交完成（成功或失败）时关闭.
func (s *Submission) Done() <-chan struct{} {
	return s.done
}

// Wait 阻塞直到提交完成并返回结果.
func (s *Submission) Wait() error {
	<-s.done
	return s.err
}

// Err 返回提交结果，未完成时返回 nil.
func (s *Submission) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// StatusCode 返回响应状态码，未完成或无响应时为 0.
func (s *Submission) StatusCode() int {
	select {
	case <-s.done:
		return s.statusCode
	default:
		return 0
	}
}
