package utils

import (
	"crypto/rand"
	"math/big"
)

var letters = []byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

// RandSeq 生成 n 位随机字母数字串，用作 ws 会话密钥。
func RandSeq(n int) string {
	b := make([]byte, n)
	limit := big.NewInt(int64(len(letters)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return ""
		}
		b[i] = letters[idx.Int64()]
	}
	return string(b)
}
