package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Load 读取单个配置文件（yaml/json 由扩展名决定）并按 mapstructure tag 解码到 out。
func Load(path string, out any) error {
	_, err := open(path, out)
	return err
}

// Watch 在 Load 的基础上监听文件变更，每次变更后重新解码到 newOut() 返回的新对象并回调 onChange。
// 变更解码失败时保留旧值，只把错误交给 onError。
func Watch(path string, out any, newOut func() any, onChange func(v any), onError func(err error)) error {
	v, err := open(path, out)
	if err != nil {
		return err
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		next := newOut()
		if err := v.Unmarshal(next); err != nil {
			if onError != nil {
				onError(fmt.Errorf("config reload %s: %w", path, err))
			}
			return
		}
		onChange(next)
	})
	v.WatchConfig()
	return nil
}

func open(path string, out any) (*viper.Viper, error) {
	if !FileExist(path) {
		return nil, fmt.Errorf("config file not exist, path=%s", path)
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := v.Unmarshal(out); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return v, nil
}

// FindUpward 从 startDir 逐级向上查找 rel，找不到返回空串。
func FindUpward(startDir, rel string) string {
	dir := startDir
	for {
		candidate := filepath.Join(dir, rel)
		if FileExist(candidate) {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func FileExist(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}
