package models

import (
	"fmt"
)

const (
	// MaxResourceSize 单个资源最大大小 50MB
	MaxResourceSize = 50 * 1024 * 1024
)

// ResourceType 资源类型分桶
type ResourceType string

const (
	TypeCSS   ResourceType = "css"   // 样式表
	TypeJS    ResourceType = "js"    // JavaScript脚本
	TypeImage ResourceType = "image" // 图片
	TypeFont  ResourceType = "font"  // 字体
	TypeVideo ResourceType = "video" // 视频
	TypeOther ResourceType = "other" // 其他未识别类型
)

// AllResourceTypes 所有资源类型(用于遍历统计)
var AllResourceTypes = []ResourceType{
	TypeCSS, TypeJS, TypeImage, TypeFont, TypeVideo, TypeOther,
}

// 各类型对应的文件扩展名列表
var (
	// CSSExtensions 样式表扩展名
	CSSExtensions = []string{".css"}

	// JSExtensions JavaScript扩展名
	JSExtensions = []string{".js", ".mjs"}

	// ImageExtensions 图片扩展名
	ImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".avif", ".webp", ".ico"}

	// FontExtensions 字体扩展名
	FontExtensions = []string{".woff", ".woff2", ".ttf", ".eot", ".otf"}

	// VideoExtensions 视频扩展名
	VideoExtensions = []string{".mp4", ".webm"}
)

// BucketDir 返回类型对应的输出子目录名
// 目录结构: output/{css,js,images,fonts,videos,other}
func (t ResourceType) BucketDir() string {
	switch t {
	case TypeCSS:
		return "css"
	case TypeJS:
		return "js"
	case TypeImage:
		return "images"
	case TypeFont:
		return "fonts"
	case TypeVideo:
		return "videos"
	default:
		return "other"
	}
}

// RefSource 资源引用的发现来源
type RefSource string

const (
	SourceHTML RefSource = "html" // 从入口HTML发现
	SourceCSS  RefSource = "css"  // 从已下载的CSS文件中发现(二级资源)
)

// ResourceReference 资源引用
// 唯一性约束: 待处理/已处理集合以ResolvedURL为键,同一URL无论被引用多少次只下载一次
type ResourceReference struct {
	// 标识信息
	RawURL      string `json:"raw_url"`      // 页面/CSS中出现的原始引用字符串
	ResolvedURL string `json:"resolved_url"` // 解析后的绝对URL(去重键)

	// 分类信息
	Type ResourceType `json:"type"` // 推断的资源类型

	// 来源信息
	Source    RefSource `json:"source"`               // 发现来源(html/css)
	SourceURL string    `json:"source_url,omitempty"` // 来源CSS文件的URL(Source=css时有效)
}

// ValidateSize 验证资源大小
func ValidateSize(size int64) error {
	if size < 0 {
		return fmt.Errorf("资源大小不能为负数")
	}
	if size > MaxResourceSize {
		return fmt.Errorf("资源大小超过限制: %d > %d", size, MaxResourceSize)
	}
	return nil
}
