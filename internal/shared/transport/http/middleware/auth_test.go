package middleware

import (
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newAuthEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	parse := func(token string) (int64, error) {
		if token == "good" {
			return 7, nil
		}
		return 0, errors.New("bad token")
	}
	e.GET("/me", Auth(parse), func(c *gin.Context) {
		uid, _ := PlayerID(c)
		c.JSON(nethttp.StatusOK, gin.H{"code": 0, "uid": uid})
	})
	return e
}

func TestAuth_有效token写入玩家id(t *testing.T) {
	e := newAuthEngine()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(nethttp.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	e.ServeHTTP(w, req)

	if !strings.Contains(w.Body.String(), `"uid":7`) {
		t.Fatalf("期望 uid=7, body=%s", w.Body.String())
	}
}

func TestAuth_缺少或无效token(t *testing.T) {
	e := newAuthEngine()
	for _, header := range []string{"", "Bearer bad", "good"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(nethttp.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		e.ServeHTTP(w, req)
		if !strings.Contains(w.Body.String(), `"code":101`) {
			t.Fatalf("期望 Unauthorized, header=%q body=%s", header, w.Body.String())
		}
	}
}
