package transport

// BizCode 表示业务码的强类型封装，用于在日志上下文中减少误传风险。
type BizCode int

// 对外业务码，HTTP/WS 响应体里的 code 字段。
const (
	OK = 0

	InvalidParam = 100
	Unauthorized = 101
	Forbidden    = 103
	NotFound     = 104

	InsufficientResources = 201
	InsufficientTroops    = 202
	InvalidMission        = 203
	TargetUnavailable     = 204
	AlreadyClaimed        = 205

	SystemError        = 500
	IntegrityViolation = 501
)
