package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/RecoveryAshes/webmirror/internal/models"
	"github.com/spf13/viper"
)

// Config 应用程序配置
type Config struct {
	Mirror  models.MirrorConfig `mapstructure:"mirror"`
	Logging LoggingConfig       `mapstructure:"logging"`
	Server  ServerConfig        `mapstructure:"server"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// ServerConfig 本地预览服务器配置
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoadConfig 加载配置文件
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// 设置配置文件
	if configPath != "" {
		// 使用指定的配置文件
		v.SetConfigFile(configPath)
	} else {
		// 搜索默认位置
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// 添加配置搜索路径
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")

		// 用户主目录
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".webmirror"))
		}
	}

	// 设置默认值
	setDefaults(v)

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		// 如果配置文件不存在,使用默认值
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	// 解析配置
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	return &config, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// 镜像任务默认值
	v.SetDefault("mirror.input", "www/index.html")
	v.SetDefault("mirror.output_dir", "www/assets")
	v.SetDefault("mirror.log_dir", "logs")
	v.SetDefault("mirror.base_url", "")
	v.SetDefault("mirror.delay", 0.1)
	v.SetDefault("mirror.timeout", 30)
	v.SetDefault("mirror.rewrite", true)

	// 日志配置默认值
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)

	// 预览服务器默认值
	v.SetDefault("server.addr", ":8080")
}

// GetMirrorConfig 从配置中提取镜像任务配置
func (c *Config) GetMirrorConfig() models.MirrorConfig {
	return c.Mirror
}

// MergeCLIFlags 合并命令行参数到配置
// 命令行参数优先于配置文件
func (c *Config) MergeCLIFlags(
	inputFile string,
	outputDir string,
	baseURL string,
	logDir string,
	delay float64,
	timeout int,
) {
	if inputFile != "" {
		c.Mirror.InputFile = inputFile
	}
	if outputDir != "" {
		c.Mirror.OutputDir = outputDir
	}
	if baseURL != "" {
		c.Mirror.BaseURL = baseURL
	}
	if logDir != "" {
		c.Mirror.LogDir = logDir
		c.Logging.LogDir = logDir
	}
	if delay >= 0 {
		c.Mirror.Delay = delay
	}
	if timeout > 0 {
		c.Mirror.Timeout = timeout
	}
}
