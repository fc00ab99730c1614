package serverconfig

import (
	"errors"
	"os"
	"sync/atomic"

	"Hegemony/internal/shared/config"
)

const defaultConfigRelPath = "configs/conf.yml"

var Conf Config

var rules atomic.Pointer[RulesConfig]

// Resolve 决定配置文件路径：显式参数 > HEGEMONY_CONFIG > 从当前目录向上查找 configs/conf.yml。
func Resolve(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	if env := os.Getenv("HEGEMONY_CONFIG"); env != "" {
		return env, nil
	}
	cur, err := os.Getwd()
	if err != nil {
		return "", err
	}
	found := config.FindUpward(cur, defaultConfigRelPath)
	if found == "" {
		return "", errors.New("config file not exist, searched configs/conf.yml from: " + cur)
	}
	return found, nil
}

// Load 读取配置到 Conf，并监听 rules 段的热更新。onError 为空时忽略热更新失败。
func Load(path string, onError func(error)) error {
	resolved, err := Resolve(path)
	if err != nil {
		return err
	}
	err = config.Watch(resolved, &Conf,
		func() any { return &Config{} },
		func(v any) {
			if next, ok := v.(*Config); ok {
				r := next.Rules
				rules.Store(&r)
			}
		},
		onError,
	)
	if err != nil {
		return err
	}
	r := Conf.Rules
	rules.Store(&r)

	// 环境变量优先；未设置时回填配置里的 jwt_secret，兼容本地开发。
	if os.Getenv("JWT_SECRET") == "" && Conf.JWTSecret != "" {
		_ = os.Setenv("JWT_SECRET", Conf.JWTSecret)
	}
	return nil
}

// CurrentRules 返回最近一次加载/热更新后的 rules 段。
func CurrentRules() RulesConfig {
	if r := rules.Load(); r != nil {
		return *r
	}
	return Conf.Rules
}
