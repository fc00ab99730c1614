package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"Hegemony/internal/shared/security"
	"Hegemony/internal/shared/transport"
)

const ctxKeyPlayerID = "player_id"

// TokenParser 校验 token 并返回玩家 id。
type TokenParser func(token string) (int64, error)

// JWTParser 用 security.ParseToken 解析。
func JWTParser(token string) (int64, error) {
	claims, err := security.ParseToken(token)
	if err != nil {
		return 0, err
	}
	return claims.Uid, nil
}

// Auth 从 Authorization: Bearer <token> 取出玩家 id，失败时返回 Unauthorized 业务码。
func Auth(parse TokenParser) gin.HandlerFunc {
	if parse == nil {
		parse = JWTParser
	}
	return func(c *gin.Context) {
		raw := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(raw, "Bearer ")
		if !ok || token == "" {
			abortUnauthorized(c, "缺少登录凭证")
			return
		}
		uid, err := parse(token)
		if err != nil || uid <= 0 {
			transport.SetErrorReason(c.Request.Context(), "TOKEN_INVALID")
			abortUnauthorized(c, "登录凭证无效")
			return
		}
		c.Set(ctxKeyPlayerID, uid)
		transport.SetPlayer(c.Request.Context(), uid)
		c.Next()
	}
}

// PlayerID 读取 Auth 写入的玩家 id。
func PlayerID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ctxKeyPlayerID)
	if !ok {
		return 0, false
	}
	uid, ok := v.(int64)
	return uid, ok && uid > 0
}

func abortUnauthorized(c *gin.Context, msg string) {
	transport.SetBizCode(c.Request.Context(), transport.Unauthorized)
	c.AbortWithStatusJSON(http.StatusOK, gin.H{"code": transport.Unauthorized, "msg": msg})
}
