package core

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	// 无配置文件时使用内置默认值
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "不存在.yaml")); err == nil {
		t.Error("指定的配置文件不存在应报错")
	}

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("加载默认配置失败: %v", err)
	}

	if config.Mirror.InputFile != "www/index.html" {
		t.Errorf("默认入口文件错误: %s", config.Mirror.InputFile)
	}
	if config.Mirror.OutputDir != "www/assets" {
		t.Errorf("默认输出目录错误: %s", config.Mirror.OutputDir)
	}
	if config.Mirror.Delay != 0.1 {
		t.Errorf("默认延迟错误: %.2f", config.Mirror.Delay)
	}
	if config.Mirror.Timeout != 30 {
		t.Errorf("默认超时错误: %d", config.Mirror.Timeout)
	}
	if !config.Mirror.RewritePaths {
		t.Error("路径改写默认应开启")
	}
	if config.Logging.Level != "info" {
		t.Errorf("默认日志级别错误: %s", config.Logging.Level)
	}
	if config.Server.Addr != ":8080" {
		t.Errorf("默认监听地址错误: %s", config.Server.Addr)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
mirror:
  input: site/home.html
  output_dir: site/static
  base_url: https://example.com/
  delay: 0.5
  timeout: 60
  rewrite: false

logging:
  level: debug

server:
  addr: ":9090"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("加载配置文件失败: %v", err)
	}

	if config.Mirror.InputFile != "site/home.html" {
		t.Errorf("入口文件错误: %s", config.Mirror.InputFile)
	}
	if config.Mirror.BaseURL != "https://example.com/" {
		t.Errorf("基准URL错误: %s", config.Mirror.BaseURL)
	}
	if config.Mirror.Delay != 0.5 {
		t.Errorf("延迟错误: %.2f", config.Mirror.Delay)
	}
	if config.Mirror.RewritePaths {
		t.Error("rewrite: false未生效")
	}
	if config.Logging.Level != "debug" {
		t.Errorf("日志级别错误: %s", config.Logging.Level)
	}
	if config.Server.Addr != ":9090" {
		t.Errorf("监听地址错误: %s", config.Server.Addr)
	}

	// 文件未覆盖的配置项保持默认值
	if config.Mirror.LogDir != "logs" {
		t.Errorf("未覆盖项应为默认值: %s", config.Mirror.LogDir)
	}
}

func TestMergeCLIFlags(t *testing.T) {
	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("加载默认配置失败: %v", err)
	}

	config.MergeCLIFlags("custom.html", "out", "https://example.com/", "mylogs", 1.5, 45)

	if config.Mirror.InputFile != "custom.html" {
		t.Errorf("input未合并: %s", config.Mirror.InputFile)
	}
	if config.Mirror.OutputDir != "out" {
		t.Errorf("output未合并: %s", config.Mirror.OutputDir)
	}
	if config.Mirror.BaseURL != "https://example.com/" {
		t.Errorf("base_url未合并: %s", config.Mirror.BaseURL)
	}
	if config.Mirror.LogDir != "mylogs" || config.Logging.LogDir != "mylogs" {
		t.Error("log_dir应同时合并到镜像配置和日志配置")
	}
	if config.Mirror.Delay != 1.5 {
		t.Errorf("delay未合并: %.2f", config.Mirror.Delay)
	}
	if config.Mirror.Timeout != 45 {
		t.Errorf("timeout未合并: %d", config.Mirror.Timeout)
	}
}

func TestMergeCLIFlagsZeroValuesKeepConfig(t *testing.T) {
	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("加载默认配置失败: %v", err)
	}

	// 空串/负延迟/零超时表示"未指定",保留配置文件值
	config.MergeCLIFlags("", "", "", "", -1, 0)

	if config.Mirror.InputFile != "www/index.html" {
		t.Errorf("未指定的input不应被覆盖: %s", config.Mirror.InputFile)
	}
	if config.Mirror.Delay != 0.1 {
		t.Errorf("未指定的delay不应被覆盖: %.2f", config.Mirror.Delay)
	}
	if config.Mirror.Timeout != 30 {
		t.Errorf("未指定的timeout不应被覆盖: %d", config.Mirror.Timeout)
	}

	// 延迟0是合法指定值(关闭节流)
	config.MergeCLIFlags("", "", "", "", 0, 0)
	if config.Mirror.Delay != 0 {
		t.Errorf("delay=0应被合并: %.2f", config.Mirror.Delay)
	}
}
