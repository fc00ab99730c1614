package mysql

import (
	"errors"
	"fmt"
	"testing"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"Hegemony/internal/game/domain"
)

func TestDeadlock_只认1213(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadlock", &mysqldriver.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"}, true},
		{"wrapped", fmt.Errorf("commit: %w", &mysqldriver.MySQLError{Number: 1213}), true},
		{"duplicate", &mysqldriver.MySQLError{Number: 1062}, false},
		{"gorm", gorm.ErrDuplicatedKey, false},
	}
	for _, c := range cases {
		if got := deadlock(c.err); got != c.want {
			t.Fatalf("%s: 期望 %v, got=%v", c.name, c.want, got)
		}
	}
}

func TestWrap_领域错误原样返回(t *testing.T) {
	taken := domain.ErrCoordinateTaken.WithData("x", 1)
	if err := wrap(OpCreateSettlement, taken, nil); !errors.Is(err, domain.ErrCoordinateTaken) {
		t.Fatalf("期望 COORDINATE_TAKEN 原样返回, got=%v", err)
	}
	err := wrap(OpInTx, &mysqldriver.MySQLError{Number: 1213}, map[string]any{"try": 3})
	if !errors.Is(err, domain.ErrSystemUnavailable) {
		t.Fatalf("期望技术错误包成系统错误, got=%v", err)
	}
	if !deadlock(err) {
		t.Fatalf("期望包装后仍能认出死锁")
	}
}
