package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/RecoveryAshes/webmirror/internal/models"
	"github.com/schollz/progressbar/v3"
)

// Reporter 报告生成器
// 产出两种格式: 机器可读的JSON报告和人类可读的文本摘要
type Reporter struct {
	logDir string
}

// NewReporter 创建报告生成器
func NewReporter(logDir string) *Reporter {
	return &Reporter{
		logDir: logDir,
	}
}

// GenerateReport 生成镜像任务报告
// 写入 {logDir}/download_report.json 和 {logDir}/download_report.txt
func (r *Reporter) GenerateReport(report *models.MirrorReport) error {
	if err := os.MkdirAll(r.logDir, 0755); err != nil {
		return fmt.Errorf("创建报告目录失败: %w", err)
	}

	// JSON报告
	jsonPath := filepath.Join(r.logDir, "download_report.json")
	jsonData, err := report.ToJSON()
	if err != nil {
		return fmt.Errorf("序列化JSON报告失败: %w", err)
	}
	if err := os.WriteFile(jsonPath, jsonData, 0644); err != nil {
		return fmt.Errorf("写入JSON报告失败: %w", err)
	}
	Infof("✅ JSON报告已生成: %s", jsonPath)

	// 文本报告
	txtPath := filepath.Join(r.logDir, "download_report.txt")
	if err := os.WriteFile(txtPath, []byte(r.renderText(report)), 0644); err != nil {
		return fmt.Errorf("写入文本报告失败: %w", err)
	}
	Infof("✅ 文本报告已生成: %s", txtPath)

	return nil
}

// renderText 渲染人类可读的文本摘要
func (r *Reporter) renderText(report *models.MirrorReport) string {
	var b strings.Builder
	line := strings.Repeat("=", 70)
	thin := strings.Repeat("-", 70)

	b.WriteString("外部资源镜像下载报告\n")
	b.WriteString(line + "\n\n")
	fmt.Fprintf(&b, "入口HTML文件: %s\n", report.EntryFile)
	fmt.Fprintf(&b, "基准URL: %s\n", report.BaseURL)
	fmt.Fprintf(&b, "输出目录: %s\n", report.OutputDir)
	fmt.Fprintf(&b, "总耗时: %.2f秒\n\n", report.Duration)

	b.WriteString("[汇总]\n")
	fmt.Fprintf(&b, "  - 发现资源总数: %d\n", report.Stats.TotalResources)
	fmt.Fprintf(&b, "  - 下载成功: %d\n", report.Stats.Downloaded)
	fmt.Fprintf(&b, "  - 下载失败: %d\n\n", report.Stats.Failed)

	b.WriteString("[按类型统计]\n")
	fmt.Fprintf(&b, "  - CSS文件: %d\n", report.Stats.CSSFiles)
	fmt.Fprintf(&b, "  - JS文件: %d\n", report.Stats.JSFiles)
	fmt.Fprintf(&b, "  - 图片: %d\n", report.Stats.Images)
	fmt.Fprintf(&b, "  - 字体: %d\n", report.Stats.Fonts)
	fmt.Fprintf(&b, "  - 视频: %d\n", report.Stats.Videos)
	fmt.Fprintf(&b, "  - 其他: %d\n\n", report.Stats.Other)

	if len(report.URLMap) > 0 {
		b.WriteString("[路径映射 (原始URL -> 本地路径)]\n")
		b.WriteString(thin + "\n")

		keys := make([]string, 0, len(report.URLMap))
		for k := range report.URLMap {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, originalURL := range keys {
			fmt.Fprintf(&b, "%s\n  -> %s\n\n", originalURL, report.URLMap[originalURL])
		}
	}

	if len(report.FailedURLs) > 0 {
		b.WriteString("\n[下载失败URL]\n")
		b.WriteString(thin + "\n")

		failed := append([]string(nil), report.FailedURLs...)
		sort.Strings(failed)

		for _, u := range failed {
			reason := ""
			for _, res := range report.Results {
				if res.URL == u && !res.Success {
					reason = res.ErrorMsg
					break
				}
			}
			if reason != "" {
				fmt.Fprintf(&b, "- %s (%s)\n", u, reason)
			} else {
				fmt.Fprintf(&b, "- %s\n", u)
			}
		}
	}

	return b.String()
}

// NewProgressBar 创建进度条
func NewProgressBar(max int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
