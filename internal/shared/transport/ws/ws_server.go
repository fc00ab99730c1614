package ws

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"Hegemony/internal/shared/security"
	"Hegemony/internal/shared/utils"
	"Hegemony/modules/kit/logx"
)

const defaultOutBuffer = 256

// WsServer 一条 ws 会话：读循环分发请求，写循环串行发送响应和推送。
type WsServer struct {
	conn       *websocket.Conn
	router     *Router
	outChan    chan *WsMsgResp
	needSecret bool
	property   map[string]any
	sync.RWMutex
	writeMu   sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
	log       logx.Logger
}

func NewWsServer(wsConn *websocket.Conn, opts Options, l logx.Logger) *WsServer {
	size := opts.OutBuffer
	if size <= 0 {
		size = defaultOutBuffer
	}
	return &WsServer{
		conn:       wsConn,
		outChan:    make(chan *WsMsgResp, size),
		needSecret: opts.NeedSecret,
		property:   make(map[string]any),
		done:       make(chan struct{}),
		log:        l,
	}
}

func (s *WsServer) Router(router *Router) {
	s.router = router
}

func (s *WsServer) SetProperty(key string, value any) {
	s.Lock()
	defer s.Unlock()
	s.property[key] = value
}

func (s *WsServer) GetProperty(key string) any {
	s.RLock()
	defer s.RUnlock()
	return s.property[key]
}

func (s *WsServer) RemoveProperty(key string) {
	s.Lock()
	defer s.Unlock()
	delete(s.property, key)
}

func (s *WsServer) Addr() string {
	return s.conn.RemoteAddr().String()
}

func (s *WsServer) Push(name string, data any) bool {
	return s.enqueue(&WsMsgResp{Body: &RespBody{Name: name, Msg: data}})
}

func (s *WsServer) enqueue(msg *WsMsgResp) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.outChan <- msg:
		return true
	default:
		s.log.Warn("ws_server out buffer full, drop msg", zap.String("name", msg.Body.Name))
		return false
	}
}

func (s *WsServer) Run() {
	go s.readMsgLoop()
	go s.writeMsgLoop()
}

func (s *WsServer) readMsgLoop() {
	defer func() {
		if err := recover(); err != nil {
			e := fmt.Sprintf("%v", err)
			s.log.Error("ws readMsgLoop error", zap.String("err", e))
		}
		s.Close()
	}()
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.log.Info("ws_server read msg end", zap.Error(err))
			return
		}

		plain, err := s.decode(data)
		if err != nil {
			s.log.Error("ws_server readMsgLoop decode", zap.Error(err))
			if s.needSecret {
				// 密钥不一致时重新握手
				s.handshake()
			}
			continue
		}

		reqBody := ReqBody{}
		if err := json.Unmarshal(plain, &reqBody); err != nil {
			s.log.Error("ws_server readMsgLoop unmarshal json error", zap.Error(err))
			continue
		}

		req := WsMsgReq{Body: &reqBody, Conn: s}
		// req 和 resp 的 Seq 必须一致
		resp := WsMsgResp{Body: &RespBody{Seq: req.Body.Seq, Name: reqBody.Name}}
		if reqBody.Name == HeartbeatMsg {
			h := &Heartbeat{}
			_ = mapstructure.Decode(reqBody.Msg, h)
			h.STime = time.Now().UnixMilli()
			resp.Body.Msg = h
		} else if s.router != nil {
			s.log.Debug("ws_server read msg", zap.String("name", reqBody.Name), zap.Int64("seq", reqBody.Seq))
			s.router.Dispatch(&req, &resp)
		}

		s.enqueue(&resp)
	}
}

func (s *WsServer) writeMsgLoop() {
	for {
		select {
		case msg := <-s.outChan:
			s.write(msg)
		case <-s.done:
			return
		}
	}
}

func (s *WsServer) Close() {
	s.closeOnce.Do(func() {
		_ = s.conn.Close()
		close(s.done)
	})
}

func (s *WsServer) Done() <-chan struct{} {
	return s.done
}

// decode 解压，需要时再用会话密钥解密。
func (s *WsServer) decode(data []byte) ([]byte, error) {
	plain, err := security.UnZip(data)
	if err != nil {
		return nil, err
	}
	if !s.needSecret {
		return plain, nil
	}
	key, _ := s.GetProperty(SecretKey).(string)
	if key == "" {
		return nil, fmt.Errorf("secret key not negotiated")
	}
	return security.AesCBCDecrypt(plain, []byte(key), []byte(key))
}

func (s *WsServer) encode(body *RespBody) ([]byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	if s.needSecret {
		key, _ := s.GetProperty(SecretKey).(string)
		if key == "" {
			return nil, fmt.Errorf("secret key not negotiated")
		}
		if raw, err = security.AesCBCEncrypt(raw, []byte(key), []byte(key)); err != nil {
			return nil, err
		}
	}
	return security.Zip(raw)
}

func (s *WsServer) write(msg *WsMsgResp) {
	data, err := s.encode(msg.Body)
	if err != nil {
		s.log.Error("ws_server write encode error", zap.String("name", msg.Body.Name), zap.Error(err))
		return
	}
	s.writeRaw(data)
}

// writeRaw 压缩后的密文是二进制字节流，必须走 BinaryMessage。
func (s *WsServer) writeRaw(data []byte) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		s.log.Error("ws_server write error", zap.Error(err))
	}
}

// handshake 下发会话密钥，握手包本身只压缩不加密。
func (s *WsServer) handshake() {
	secretKey, _ := s.GetProperty(SecretKey).(string)
	if secretKey == "" {
		secretKey = utils.RandSeq(16)
		s.SetProperty(SecretKey, secretKey)
	}

	data, err := json.Marshal(&RespBody{Name: HandshakeMsg, Msg: &Handshake{Key: secretKey}})
	if err != nil {
		s.log.Error("ws_server handshake marshal json error", zap.Error(err))
		return
	}
	zipData, err := security.Zip(data)
	if err != nil {
		s.log.Error("ws_server handshake zip error", zap.Error(err))
		return
	}
	s.writeRaw(zipData)
}
