package security

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrJWTSecretMissing = errors.New("JWT_SECRET is not set")
	ErrInvalidPlayer    = errors.New("player id must be positive")
)

const (
	// Issuer 只接受本引擎签发的 token。
	Issuer          = "hegemony"
	defaultTokenTTL = 7 * 24 * time.Hour
	clockSkew       = 5 * time.Second
)

// Claims Uid 即玩家 id，所有指令都以它作为发起方；Subject 冗余一份字符串形式。
type Claims struct {
	Uid int64 `json:"uid"`
	jwt.RegisteredClaims
}

func signingKey() ([]byte, error) {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return []byte(secret), nil
	}
	return nil, ErrJWTSecretMissing
}

// Award 给玩家签发 token，ttl<=0 时默认 7 天。
func Award(uid int64, ttl time.Duration) (string, error) {
	if uid <= 0 {
		return "", ErrInvalidPlayer
	}
	key, err := signingKey()
	if err != nil {
		return "", err
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	now := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Uid: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   strconv.FormatInt(uid, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}).SignedString(key)
}

// ParseToken 校验签名、签发方和过期时间，允许少量时钟偏差。
func ParseToken(tokenStr string) (*Claims, error) {
	key, err := signingKey()
	if err != nil {
		return nil, err
	}
	claims := &Claims{}
	_, err = jwt.ParseWithClaims(tokenStr, claims,
		func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockSkew),
	)
	if err != nil {
		return nil, err
	}
	if claims.Uid <= 0 || claims.Subject != strconv.FormatInt(claims.Uid, 10) {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
