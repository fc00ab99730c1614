package db

import (
	"strings"
	"testing"

	"Hegemony/internal/shared/serverconfig"
)

func TestDSN(t *testing.T) {
	got := DSN(serverconfig.MySQLConfig{Host: "127.0.0.1", Port: 3306, User: "root", Password: "pw", DBName: "hegemony"})
	if !strings.HasPrefix(got, "root:pw@tcp(127.0.0.1:3306)/hegemony?") {
		t.Fatalf("期望前缀正确, got=%s", got)
	}
	for _, want := range []string{"charset=utf8mb4", "parseTime=true", "loc=UTC"} {
		if !strings.Contains(got, want) {
			t.Fatalf("期望包含 %s, got=%s", want, got)
		}
	}
	if got := DSN(serverconfig.MySQLConfig{Charset: "utf8"}); !strings.Contains(got, "charset=utf8&") {
		t.Fatalf("期望沿用配置的 charset, got=%s", got)
	}
}
