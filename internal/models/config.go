package models

import (
	"fmt"
	"net/url"
)

// MirrorConfig 镜像任务配置
// 所有路径/基准URL/延迟都通过该结构显式传入流水线入口,不依赖全局状态
type MirrorConfig struct {
	InputFile    string  `json:"input_file" mapstructure:"input"`       // 入口HTML文件路径 (默认: www/index.html)
	OutputDir    string  `json:"output_dir" mapstructure:"output_dir"`  // 资源输出目录 (默认: www/assets)
	LogDir       string  `json:"log_dir" mapstructure:"log_dir"`        // 日志/报告目录 (默认: logs)
	BaseURL      string  `json:"base_url" mapstructure:"base_url"`      // 解析相对引用的基准URL
	Delay        float64 `json:"delay" mapstructure:"delay"`            // 每次请求前的固定延迟(秒) (默认: 0.1)
	Timeout      int     `json:"timeout" mapstructure:"timeout"`        // HTTP请求超时(秒) (默认: 30)
	RewritePaths bool    `json:"rewrite_paths" mapstructure:"rewrite"`  // 是否将HTML/CSS中的引用改写为本地路径 (默认: true)
}

// Validate 验证配置
func (c *MirrorConfig) Validate() error {
	if c.InputFile == "" {
		return fmt.Errorf("入口HTML文件路径不能为空")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("输出目录不能为空")
	}
	if err := ValidateBaseURL(c.BaseURL); err != nil {
		return err
	}
	if c.Delay < 0 || c.Delay > 60 {
		return fmt.Errorf("请求延迟必须在0-60秒之间,当前值: %.2f", c.Delay)
	}
	if c.Timeout < 1 || c.Timeout > 300 {
		return fmt.Errorf("超时时间必须在1-300秒之间,当前值: %d", c.Timeout)
	}
	return nil
}

// ValidateBaseURL 验证基准URL
func ValidateBaseURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("基准URL不能为空")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("基准URL格式无效: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("基准URL协议必须是http或https")
	}
	if parsed.Host == "" {
		return fmt.Errorf("基准URL缺少主机名")
	}
	return nil
}
