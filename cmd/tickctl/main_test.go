package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"Hegemony/internal/shared/security"
)

func writeConf(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conf.yml")
	body := "node_id: 1\nstorage: memory\nlog:\n  level: error\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("期望写入配置成功, err=%v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRun_单轮输出统计(t *testing.T) {
	out, err := execute(t, "run", "army", "-c", writeConf(t))
	if err != nil {
		t.Fatalf("期望成功, err=%v out=%s", err, out)
	}
	if !strings.Contains(strings.ToLower(out), "army") || !strings.Contains(out, "0") {
		t.Fatalf("期望表格里有 army 和认领数, out=%s", out)
	}
}

func TestRun_未知循环(t *testing.T) {
	if _, err := execute(t, "run", "weather", "-c", writeConf(t)); err == nil {
		t.Fatalf("期望未知循环报错")
	}
}

func TestStuck_没有故障军队(t *testing.T) {
	out, err := execute(t, "stuck", "-c", writeConf(t))
	if err != nil {
		t.Fatalf("期望成功, err=%v", err)
	}
	if !strings.Contains(out, "no faulted armies") {
		t.Fatalf("期望提示没有故障军队, out=%s", out)
	}
}

func TestRelease_非法id(t *testing.T) {
	if _, err := execute(t, "release", "abc", "-c", writeConf(t)); err == nil {
		t.Fatalf("期望非法 id 报错")
	}
}

func TestToken_签发后可解析(t *testing.T) {
	t.Setenv("JWT_SECRET", "tickctl-test-secret")
	out, err := execute(t, "token", "42", "-c", writeConf(t))
	if err != nil {
		t.Fatalf("期望签发成功, err=%v", err)
	}
	claims, err := security.ParseToken(strings.TrimSpace(out))
	if err != nil || claims.Uid != 42 {
		t.Fatalf("期望解析出 uid=42, claims=%+v err=%v", claims, err)
	}
}
