package core

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/RecoveryAshes/webmirror/internal/collect"
	"github.com/RecoveryAshes/webmirror/internal/models"
	"github.com/RecoveryAshes/webmirror/internal/utils"
	"github.com/google/uuid"
)

// Mirror 镜像任务协调器
// 执行流程: 读取入口HTML -> 创建输出目录 -> 收集引用 -> 下载引擎 -> 路径改写 -> 生成报告
type Mirror struct {
	config  models.MirrorConfig
	fetcher Fetcher
}

// NewMirror 创建镜像任务
// fetcher传nil时使用基于Colly的默认HTTP获取器; 测试中可注入桩实现
func NewMirror(config models.MirrorConfig, fetcher Fetcher) (*Mirror, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("配置无效: %w", err)
	}

	if fetcher == nil {
		fetcher = NewHTTPFetcher(config.Timeout)
	}

	return &Mirror{
		config:  config,
		fetcher: fetcher,
	}, nil
}

// Run 执行镜像任务
// 唯一的致命错误是入口HTML不可读; 单个资源的失败只记录在结果中,不中断运行
func (m *Mirror) Run() (*models.MirrorReport, error) {
	startTime := time.Now()

	utils.Infof("🚀 开始资源镜像任务")
	utils.Infof("入口HTML: %s", m.config.InputFile)
	utils.Infof("基准URL: %s", m.config.BaseURL)
	utils.Infof("输出目录: %s", m.config.OutputDir)
	utils.Infof("请求延迟: %.2f秒", m.config.Delay)

	// 读取入口HTML(唯一会中止任务的错误)
	htmlData, err := os.ReadFile(m.config.InputFile)
	if err != nil {
		return nil, fmt.Errorf("读取入口HTML失败: %w", err)
	}

	// 创建输出目录结构
	if err := m.setupOutputDirectories(); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}

	// 磁盘空间检查(仅告警)
	if err := utils.CheckDiskSpace(m.config.OutputDir); err != nil {
		utils.Warnf("磁盘空间检查失败: %v", err)
	}

	// 收集初始引用集合
	collector, err := collect.NewHTMLCollector(m.config.BaseURL)
	if err != nil {
		return nil, err
	}
	refs, err := collector.Collect(string(htmlData))
	if err != nil {
		return nil, fmt.Errorf("解析入口HTML失败: %w", err)
	}
	utils.Infof("🔍 从HTML收集到 %d 个资源引用", len(refs))

	// 下载引擎: 排空待处理集合(CSS二级资源在过程中追加)
	engine := NewEngine(m.config, m.fetcher)
	results := engine.Run(refs, collector.InvalidRefs())

	// 路径改写(可配置关闭)
	if m.config.RewritePaths {
		rewriter := NewRewriter(m.config.OutputDir, engine.URLMap())
		if err := rewriter.Run(m.config.InputFile, results); err != nil {
			utils.Warnf("路径改写失败: %v", err)
		}
	}

	// 汇总报告
	report := m.buildReport(startTime, results, engine.URLMap())

	reporter := utils.NewReporter(m.config.LogDir)
	if err := reporter.GenerateReport(report); err != nil {
		utils.Warnf("生成报告失败: %v", err)
	}

	utils.Infof("✅ 镜像任务完成: 成功 %d, 失败 %d, 耗时 %.2f秒",
		report.Stats.Downloaded, report.Stats.Failed, report.Duration)

	return report, nil
}

// setupOutputDirectories 创建类型分桶目录结构
// 结构: output/{css,js,images,fonts,videos,other}
func (m *Mirror) setupOutputDirectories() error {
	for _, t := range models.AllResourceTypes {
		dir := filepath.Join(m.config.OutputDir, t.BucketDir())
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("创建目录失败 [%s]: %w", dir, err)
		}
		utils.Debugf("创建目录: %s", dir)
	}

	utils.Infof("✅ 输出目录结构创建完成: %s", m.config.OutputDir)
	return nil
}

// buildReport 从结果列表汇总报告
func (m *Mirror) buildReport(startTime time.Time, results []*models.DownloadResult, urlMap map[string]string) *models.MirrorReport {
	endTime := time.Now()

	stats := models.MirrorStats{
		TotalResources: len(results),
	}

	failedURLs := make([]string, 0)
	for _, result := range results {
		if result.Success {
			stats.Downloaded++
			stats.TotalSize += result.Size
			stats.CountByType(result.Type)
		} else {
			stats.Failed++
			failedURLs = append(failedURLs, result.URL)
		}
	}
	stats.Duration = endTime.Sub(startTime).Seconds()

	return &models.MirrorReport{
		TaskID:     uuid.New().String(),
		EntryFile:  m.config.InputFile,
		BaseURL:    m.config.BaseURL,
		StartTime:  startTime,
		EndTime:    endTime,
		Duration:   stats.Duration,
		Stats:      stats,
		Results:    results,
		URLMap:     urlMap,
		FailedURLs: failedURLs,
		OutputDir:  m.config.OutputDir,
		Config:     m.config,
	}
}
