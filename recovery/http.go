package recovery

import (
	"net/http"

	"github.com/Tsukikage7/tracefwd/logger"
)

// HTTPMiddleware 返回 HTTP panic 恢复中间件，panic 时返回 500.
//
// 示例:
//
//	mux := http.NewServeMux()
//	mux.Handle("/metrics", m.GetHandler())
//	wrapped := recovery.HTTPMiddleware(recovery.WithLogger(log))(mux)
func HTTPMiddleware(opts ...Option) func(http.Handler) http.Handler {
	o := applyOptions(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					stack := captureStack(o.StackSize)

					o.Logger.WithContext(r.Context()).With(
						logger.Any("panic", p),
						logger.String("method", r.Method),
						logger.String("path", r.URL.Path),
						logger.String("stack", string(stack)),
					).Error("http panic recovered")

					if o.Handler != nil {
						o.Handler(p, stack)
					}

					w.WriteHeader(http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
