package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/RecoveryAshes/webmirror/internal/core"
	"github.com/RecoveryAshes/webmirror/internal/server"
	"github.com/RecoveryAshes/webmirror/internal/utils"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 命令行参数
var (
	// 全局参数
	configFile string
	verbose    bool
	logLevel   string

	// 镜像参数
	inputFile  string
	outputDir  string
	baseURL    string
	logDir     string
	delay      float64
	timeout    int
	rewrite    bool

	// 预览服务器参数
	serveAddr   string
	serveDir    string
	serveAssets string
)

var rootCmd = &cobra.Command{
	Use:   "webmirror",
	Short: "静态站点外部资源镜像工具",
	Long: `WebMirror - 静态站点外部资源镜像工具 (Go版本)

给定一个HTML入口文件,发现其中引用的全部外部资源
(样式表、脚本、图片、字体、视频,包括CSS内部通过url()/@import间接引用的资源),
下载并按类型分类保存到输出目录,同时生成JSON/文本格式的下载报告。

功能特性:
  • HTML/CSS资源引用提取 (含srcset、内联style、@import)
  • CSS二级资源递归发现
  • 按解析后URL去重,同一资源只下载一次
  • 固定请求间隔节流,避免压垮目标服务器
  • 下载后将HTML/CSS中的引用改写为本地路径
  • 内置本地预览服务器

使用示例:
  # 镜像入口HTML引用的全部资源
  webmirror -i www/index.html --base-url https://example.com/

  # 自定义输出目录和请求延迟
  webmirror -i www/index.html -o www/assets --base-url https://example.com/ --delay 0.5

  # 启动本地预览服务器
  webmirror serve --addr :8080 --dir www

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 加载配置
		config, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		// 初始化日志系统
		logConfig := utils.LogConfig{
			Level:      config.Logging.Level,
			LogDir:     config.Logging.LogDir,
			MaxSize:    config.Logging.Rotation.MaxSize,
			MaxBackups: config.Logging.Rotation.MaxBackups,
			MaxAge:     config.Logging.Rotation.MaxAge,
			Compress:   config.Logging.Rotation.Compress,
		}

		// 命令行参数覆盖配置文件
		if logLevel != "" {
			logConfig.Level = logLevel
		}
		if logDir != "" {
			logConfig.LogDir = logDir
		}

		if err := utils.InitLogger(logConfig); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}

		if verbose {
			utils.Info("详细模式已启用")
		}

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// 设置信号处理(Ctrl+C优雅退出)
		// 中断时已写入磁盘的部分结果保留,报告只在自然完成时生成
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		go func() {
			sig := <-sigChan
			utils.Warnf("\n收到中断信号: %v, 正在退出...", sig)
			os.Exit(0)
		}()

		// 加载配置并合并命令行参数
		appConfig, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		appConfig.MergeCLIFlags(inputFile, outputDir, baseURL, logDir, delay, timeout)
		if cmd.Flags().Changed("rewrite") {
			appConfig.Mirror.RewritePaths = rewrite
		}

		// 验证参数
		mirrorConfig := appConfig.GetMirrorConfig()
		if err := ValidateFlags(mirrorConfig.BaseURL, mirrorConfig.Delay, mirrorConfig.Timeout); err != nil {
			return err
		}

		// 创建并执行镜像任务
		mirror, err := core.NewMirror(mirrorConfig, nil)
		if err != nil {
			return fmt.Errorf("创建镜像任务失败: %w", err)
		}

		report, err := mirror.Run()
		if err != nil {
			return fmt.Errorf("镜像任务失败: %w", err)
		}

		// 显示统计结果
		fmt.Println("\n==================================================")
		fmt.Println("📊 镜像统计")
		fmt.Println("==================================================")
		fmt.Printf("✅ 发现资源数: %d\n", report.Stats.TotalResources)
		fmt.Printf("✅ 下载成功: %d\n", report.Stats.Downloaded)
		fmt.Printf("❌ 下载失败: %d\n", report.Stats.Failed)
		fmt.Printf("   CSS: %d | JS: %d | 图片: %d | 字体: %d | 视频: %d | 其他: %d\n",
			report.Stats.CSSFiles, report.Stats.JSFiles, report.Stats.Images,
			report.Stats.Fonts, report.Stats.Videos, report.Stats.Other)
		fmt.Printf("📦 总大小: %.2f MB\n", float64(report.Stats.TotalSize)/(1024*1024))
		fmt.Printf("⏱️  总耗时: %.2f秒\n", report.Duration)
		fmt.Println("==================================================")

		utils.Info("✨ 镜像任务完成!")
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动本地预览服务器",
	Long: `把镜像好的站点作为静态文件暴露在本地HTTP端口上,用于打包前预览。

/assets/ 路径下提供资源目录,其余路径提供站点根目录。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appConfig, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		addr := appConfig.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		siteDir := serveDir
		assetsDir := serveAssets
		if assetsDir == "" {
			assetsDir = appConfig.Mirror.OutputDir
		}
		if siteDir == "" {
			siteDir = filepath.Dir(appConfig.Mirror.InputFile)
		}

		srv := server.New(addr, siteDir, assetsDir)
		return srv.Start()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("WebMirror %s\n", Version)
		fmt.Printf("构建时间: %s\n", BuildTime)
		fmt.Println("Go实现版本 - 静态站点资源镜像工具")
	},
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出模式")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "日志/报告目录 (默认: logs)")

	// 镜像参数
	rootCmd.Flags().StringVarP(&inputFile, "input", "i", "", "入口HTML文件路径 (默认: www/index.html)")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "资源输出目录 (默认: www/assets)")
	rootCmd.Flags().StringVar(&baseURL, "base-url", "", "解析相对引用的基准URL (必需,除非写入配置文件)")
	rootCmd.Flags().Float64Var(&delay, "delay", -1, "每次请求前的固定延迟(秒) (默认: 0.1)")
	rootCmd.Flags().IntVar(&timeout, "timeout", 0, "HTTP请求超时(秒) (默认: 30)")
	rootCmd.Flags().BoolVar(&rewrite, "rewrite", true, "下载后将HTML/CSS中的引用改写为本地路径")

	// 预览服务器参数
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "监听地址 (默认: :8080)")
	serveCmd.Flags().StringVar(&serveDir, "dir", "", "站点根目录 (默认: 入口HTML所在目录)")
	serveCmd.Flags().StringVar(&serveAssets, "assets", "", "资源目录 (默认: 镜像输出目录)")

	// 添加子命令
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
