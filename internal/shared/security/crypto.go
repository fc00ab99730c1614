package security

import (
	"bytes"
	"compress/gzip"
	"io"

	"github.com/go-think/openssl"
)

// AesCBCEncrypt 用会话密钥加密 ws 推送内容，key 同时作为 iv，和客户端约定零填充。
func AesCBCEncrypt(src, key, iv []byte) ([]byte, error) {
	return openssl.AesCBCEncrypt(src, key, iv, openssl.ZEROS_PADDING)
}

func AesCBCDecrypt(src, key, iv []byte) ([]byte, error) {
	return openssl.AesCBCDecrypt(src, key, iv, openssl.ZEROS_PADDING)
}

// Zip gzip 压缩。
func Zip(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func UnZip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
