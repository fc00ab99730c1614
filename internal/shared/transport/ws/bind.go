package ws

import (
	"errors"

	"github.com/go-viper/mapstructure/v2"
)

// BindJSON 将 WsMsgReq.Body.Msg 解码到目标结构体，字段名沿用 json tag。
func BindJSON(req *WsMsgReq, dst any) error {
	if req == nil || req.Body == nil {
		return errors.New("ws request body is nil")
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           dst,
	})
	if err != nil {
		return err
	}
	return dec.Decode(req.Body.Msg)
}

// PlayerID 连接上认证时写入的玩家 id。
func PlayerID(conn WSConn) (int64, bool) {
	if conn == nil {
		return 0, false
	}
	uid, ok := conn.GetProperty(ConnKeyUID).(int64)
	return uid, ok && uid > 0
}
