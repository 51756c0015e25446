package main

import (
	"fmt"

	"github.com/RecoveryAshes/webmirror/internal/models"
)

// ValidateFlags 验证命令行标志
func ValidateFlags(baseURL string, delay float64, timeout int) error {
	// 验证基准URL
	if err := models.ValidateBaseURL(baseURL); err != nil {
		return fmt.Errorf("无效的基准URL (--base-url): %w", err)
	}

	// 验证请求延迟
	if delay < 0 || delay > 60 {
		return fmt.Errorf("请求延迟必须在0-60秒之间,当前值: %.2f", delay)
	}

	// 验证超时时间
	if timeout < 1 || timeout > 300 {
		return fmt.Errorf("超时时间必须在1-300秒之间,当前值: %d", timeout)
	}

	return nil
}
