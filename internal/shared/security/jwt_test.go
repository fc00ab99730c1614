package security

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAward_缺少JWT_SECRET应失败(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Award(1, 0); err == nil {
		t.Fatalf("期望 JWT_SECRET 为空时 Award 返回错误")
	}
}

func TestAwardParse_正常签发并解析(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-123")

	token, err := Award(42, time.Hour)
	if err != nil {
		t.Fatalf("Award err=%v", err)
	}
	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken err=%v", err)
	}
	if claims.Uid != 42 {
		t.Fatalf("期望 claims.Uid==42, got=%v", claims.Uid)
	}
}

func TestParse_密钥不匹配应失败(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-123")

	token, err := Award(42, time.Hour)
	if err != nil {
		t.Fatalf("Award err=%v", err)
	}
	t.Setenv("JWT_SECRET", "another-secret")
	if _, err := ParseToken(token); err == nil {
		t.Fatalf("期望密钥不匹配时解析失败")
	}
}

func TestAward_非法玩家id(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-123")
	if _, err := Award(0, time.Hour); !errors.Is(err, ErrInvalidPlayer) {
		t.Fatalf("期望 ErrInvalidPlayer, got=%v", err)
	}
}

func TestParse_拒绝外部签发与过期(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-123")
	sign := func(c *Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("test-secret-123"))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}
	now := time.Now()
	foreign := sign(&Claims{Uid: 7, RegisteredClaims: jwt.RegisteredClaims{
		Issuer: "other", Subject: "7", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}})
	if _, err := ParseToken(foreign); err == nil {
		t.Fatalf("期望拒绝外部签发方")
	}
	expired := sign(&Claims{Uid: 7, RegisteredClaims: jwt.RegisteredClaims{
		Issuer: Issuer, Subject: "7", ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
	}})
	if _, err := ParseToken(expired); err == nil {
		t.Fatalf("期望拒绝已过期 token")
	}
	noExp := sign(&Claims{Uid: 7, RegisteredClaims: jwt.RegisteredClaims{Issuer: Issuer, Subject: "7"}})
	if _, err := ParseToken(noExp); err == nil {
		t.Fatalf("期望拒绝没有过期时间的 token")
	}
}
