package collect

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/RecoveryAshes/webmirror/internal/models"
)

// ErrNotResource 引用本身不是可下载的外部资源(data: URI、javascript:伪协议、纯片段等)
// 与解析失败(invalid_reference)区分: 这类引用静默丢弃,不计入失败
var ErrNotResource = errors.New("不是可下载的资源引用")

// 不可下载的引用协议前缀
var skippedSchemes = []string{"data:", "javascript:", "mailto:", "tel:", "about:"}

// Resolve 将相对/绝对资源引用解析为绝对URL
// 同一(引用,基准)输入总是产生相同输出; 片段(#fragment)会被剥除
// 返回错误表示该引用无法下载: errors.Is(err, ErrNotResource)为真时静默丢弃,
// 否则按invalid_reference处理
func Resolve(ref string, base *url.URL) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("引用字符串为空")
	}

	// 纯片段引用不是资源
	if strings.HasPrefix(ref, "#") {
		return "", fmt.Errorf("片段引用 %s: %w", ref, ErrNotResource)
	}

	lower := strings.ToLower(ref)
	for _, scheme := range skippedSchemes {
		if strings.HasPrefix(lower, scheme) {
			return "", fmt.Errorf("协议 %s: %w", scheme, ErrNotResource)
		}
	}

	parsed, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("引用格式无效: %w", err)
	}

	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", fmt.Errorf("解析后的URL协议必须是http或https: %s", resolved.String())
	}
	if resolved.Host == "" {
		return "", fmt.Errorf("解析后的URL缺少主机名: %s", resolved.String())
	}

	// 片段对下载无意义,去除以保证去重键稳定
	resolved.Fragment = ""

	return resolved.String(), nil
}

// ClassifyURL 根据URL的文件扩展名推断资源类型
// 未匹配任何扩展名列表的归入other
func ClassifyURL(rawURL string) models.ResourceType {
	parsed, err := url.Parse(rawURL)
	p := rawURL
	if err == nil {
		p = parsed.Path
	}

	ext := strings.ToLower(path.Ext(p))
	if ext == "" {
		return models.TypeOther
	}

	switch {
	case containsExt(models.CSSExtensions, ext):
		return models.TypeCSS
	case containsExt(models.JSExtensions, ext):
		return models.TypeJS
	case containsExt(models.ImageExtensions, ext):
		return models.TypeImage
	case containsExt(models.FontExtensions, ext):
		return models.TypeFont
	case containsExt(models.VideoExtensions, ext):
		return models.TypeVideo
	default:
		return models.TypeOther
	}
}

// contentTypeMap HTTP Content-Type关键字 -> 资源类型
// 用于URL扩展名无法判断类型时的二次分类
var contentTypeMap = []struct {
	keyword string
	rtype   models.ResourceType
}{
	{"text/css", models.TypeCSS},
	{"javascript", models.TypeJS},
	{"image/", models.TypeImage},
	{"font/", models.TypeFont},
	{"application/font", models.TypeFont},
	{"video/", models.TypeVideo},
}

// ClassifyContentType 根据HTTP Content-Type推断资源类型
// 第二个返回值表示是否匹配成功
func ClassifyContentType(contentType string) (models.ResourceType, bool) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if ct == "" {
		return models.TypeOther, false
	}

	for _, entry := range contentTypeMap {
		if strings.Contains(ct, entry.keyword) {
			return entry.rtype, true
		}
	}
	return models.TypeOther, false
}

func containsExt(exts []string, ext string) bool {
	for _, e := range exts {
		if e == ext {
			return true
		}
	}
	return false
}
