package models

import (
	"encoding/json"
	"time"
)

// 错误类型常量(记录在DownloadResult.ErrorType中)
const (
	ErrInvalidReference = "invalid_reference" // 引用无法解析为绝对URL
	ErrFetch            = "fetch_error"       // 网络错误或非2xx响应
	ErrWrite            = "write_error"       // 本地文件写入失败
)

// DownloadResult 单个资源的下载结果
// 在每次下载尝试后立即创建,创建后不可变
type DownloadResult struct {
	// 资源引用
	URL  string       `json:"url"`  // 解析后的绝对URL
	Type ResourceType `json:"type"` // 最终资源类型(可能经Content-Type修正)

	// 下载结果
	FilePath string `json:"path"`    // 本地保存路径(失败时为空)
	Success  bool   `json:"success"` // 是否成功
	Size     int64  `json:"size"`    // 下载字节数

	// 错误信息(失败时有效)
	ErrorType string `json:"error_type,omitempty"` // 错误类型(invalid_reference/fetch_error/write_error)
	ErrorMsg  string `json:"error,omitempty"`      // 错误详情

	// 时间戳
	DownloadedAt time.Time `json:"downloaded_at"`
}

// MirrorStats 镜像任务统计
// JSON键名与报告格式保持稳定,不可随意改动
type MirrorStats struct {
	TotalResources int `json:"total_resources"` // 发现的资源总数(去重后)
	Downloaded     int `json:"downloaded"`      // 下载成功数
	Failed         int `json:"failed"`          // 下载失败数

	// 按类型计数
	CSSFiles int `json:"css_files"` // CSS文件数
	JSFiles  int `json:"js_files"`  // JS文件数
	Images   int `json:"images"`    // 图片数
	Fonts    int `json:"fonts"`     // 字体数
	Videos   int `json:"videos"`    // 视频数
	Other    int `json:"other"`     // 其他文件数

	TotalSize int64   `json:"total_size"` // 总字节数
	Duration  float64 `json:"duration"`   // 总耗时(秒)
}

// CountByType 按资源类型累加计数
func (s *MirrorStats) CountByType(t ResourceType) {
	switch t {
	case TypeCSS:
		s.CSSFiles++
	case TypeJS:
		s.JSFiles++
	case TypeImage:
		s.Images++
	case TypeFont:
		s.Fonts++
	case TypeVideo:
		s.Videos++
	default:
		s.Other++
	}
}

// MirrorReport 镜像任务报告
type MirrorReport struct {
	// 任务信息
	TaskID    string `json:"task_id"`
	EntryFile string `json:"entry_file"` // 入口HTML文件路径
	BaseURL   string `json:"base_url"`   // 解析相对引用的基准URL

	// 时间信息
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  float64   `json:"duration"` // 秒

	// 统计信息
	Stats MirrorStats `json:"stats"`

	// 结果列表(按完成顺序)
	Results []*DownloadResult `json:"results"`

	// URL映射表: 原始引用/绝对URL -> 本地相对路径(用于路径改写)
	URLMap map[string]string `json:"url_map"`

	// 失败URL列表
	FailedURLs []string `json:"failed_urls"`

	// 输出目录
	OutputDir string `json:"output_dir"`

	// 配置快照
	Config MirrorConfig `json:"config"`
}

// ToJSON 序列化为JSON
func (r *MirrorReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON 从JSON反序列化
func (r *MirrorReport) FromJSON(data []byte) error {
	return json.Unmarshal(data, r)
}
