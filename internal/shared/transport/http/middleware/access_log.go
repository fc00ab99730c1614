package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"Hegemony/internal/shared/transport"
	"Hegemony/modules/kit/logx"
)

// AccessLog 每个请求一条 access 日志。
// 业务码由 handler 通过 transport.SetBizCode 写入，未写时按 HTTP 状态推断。
func AccessLog(log logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		ctx := transport.Begin(c.Request.Context(), transport.ProtoHTTP, c.Request.Method+" "+route)
		c.Request = c.Request.WithContext(ctx)
		defer transport.Finish(ctx, log)

		c.Next()

		if _, ok := transport.BizCodeOf(ctx); !ok {
			transport.SetBizCode(ctx, statusToBizCode(c.Writer.Status()))
		}
	}
}

func statusToBizCode(status int) transport.BizCode {
	switch {
	case status >= http.StatusInternalServerError:
		return transport.SystemError
	case status == http.StatusNotFound:
		return transport.NotFound
	case status == http.StatusUnauthorized:
		return transport.Unauthorized
	case status >= http.StatusBadRequest:
		return transport.InvalidParam
	default:
		return transport.OK
	}
}
