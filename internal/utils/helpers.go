package utils

import (
	"fmt"
	"net/url"

	"github.com/shirou/gopsutil/v3/disk"
)

const (
	// MinFreeDiskSpace 磁盘剩余空间告警阈值 (100MB)
	MinFreeDiskSpace = 100 * 1024 * 1024
)

// ValidateURL 验证URL格式
func ValidateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("URL格式无效: %w", err)
	}

	if parsed.Scheme == "" {
		return fmt.Errorf("URL缺少协议(http/https)")
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL协议必须是http或https")
	}

	if parsed.Host == "" {
		return fmt.Errorf("URL缺少主机名")
	}

	return nil
}

// CheckDiskSpace 检查目标路径所在磁盘的剩余空间
// 空间低于阈值时打印警告,不中断任务(镜像运行过程中写入失败会按资源粒度记录)
func CheckDiskSpace(path string) error {
	usage, err := disk.Usage(path)
	if err != nil {
		return fmt.Errorf("获取磁盘使用信息失败: %w", err)
	}

	if usage.Free < MinFreeDiskSpace {
		Warnf("磁盘剩余空间不足: %.1f MB (路径: %s)", float64(usage.Free)/(1024*1024), path)
	} else {
		Debugf("磁盘剩余空间: %.1f GB (路径: %s)", float64(usage.Free)/(1024*1024*1024), path)
	}

	return nil
}
