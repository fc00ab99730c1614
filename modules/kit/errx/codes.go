package errx

// 跨服务统一的系统类错误码。业务域错误码由各业务包自行定义，不放在 kit 里。

const (
	// CodeInternal 兜底的内部错误。
	CodeInternal Code = "INTERNAL_ERROR"
	// CodeUnavailable 依赖不可用（DB/Mongo/下游）。
	CodeUnavailable Code = "SERVICE_UNAVAILABLE"
	// CodeTimeout 请求或依赖调用超时。
	CodeTimeout Code = "TIMEOUT"
	// CodeInvalidParam 请求参数错误。
	CodeInvalidParam Code = "INVALID_PARAM"
	// CodeIntegrity 已部分提交的处理失败。
	CodeIntegrity Code = "INTEGRITY_VIOLATION"
)

// 哨兵错误，通过 WithData/WithCause 派生，禁止直接修改。
var (
	ErrInternal     = NewSys(CodeInternal, "服务器内部错误")
	ErrUnavailable  = NewSys(CodeUnavailable, "服务不可用")
	ErrTimeout      = NewSys(CodeTimeout, "请求超时")
	ErrInvalidParam = NewBiz(CodeInvalidParam, "请求参数错误")
	ErrIntegrity    = NewIntegrity(CodeIntegrity, "数据完整性异常")
)
