package ws

// 帧格式：gzip 后的 JSON，握手之后如果开了 NeedSecret 再整体加密。
// 客户端请求带自增 seq，服务端按同一 seq 回包；服务端主动推送 seq 固定为 0。

const (
	HandshakeMsg = "handshake"
	HeartbeatMsg = "heartbeat"

	// 连接属性
	SecretKey  = "secretKey"
	ConnKeyUID = "uid"
)

type ReqBody struct {
	Seq  int64  `json:"seq"`
	Name string `json:"name"`
	Msg  any    `json:"msg"`
}

// RespBody 回包和推送共用，推送时 Code 恒为 0。
type RespBody struct {
	Seq  int64  `json:"seq"`
	Name string `json:"name"`
	Code int    `json:"code"`
	Msg  any    `json:"msg"`
}

// IsPush 服务端主动推送的帧。
func (b *RespBody) IsPush() bool { return b != nil && b.Seq == 0 && b.Name != HandshakeMsg }

type WsMsgReq struct {
	Body *ReqBody
	Conn WSConn
}

type WsMsgResp struct {
	Body *RespBody
}

// Handshake 连接建立后服务端下发的第一帧。
type Handshake struct {
	Key string `json:"key"`
}

// Heartbeat 客户端带本地时间，服务端补上自己的时间原样回。
type Heartbeat struct {
	CTime int64 `json:"ctime" mapstructure:"ctime"`
	STime int64 `json:"stime" mapstructure:"stime"`
}

// WSConn 一条已认证的 ws 连接。
type WSConn interface {
	SetProperty(key string, value any)
	GetProperty(key string) any
	RemoveProperty(key string)
	Addr() string
	// Push 缓冲满或连接已关闭时丢弃并返回 false，不阻塞调用方。
	Push(name string, data any) bool
	Close()
	Done() <-chan struct{}
}

// SessionHook 连接认证成功和断开时回调，通知中心靠它维护玩家到连接的映射。
type SessionHook interface {
	OnOpen(player int64, conn WSConn)
	OnClose(player int64, conn WSConn)
}
