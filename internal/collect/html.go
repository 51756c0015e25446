package collect

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/RecoveryAshes/webmirror/internal/models"
	"github.com/RecoveryAshes/webmirror/internal/utils"
	"golang.org/x/net/html"
)

// srcTags 携带src属性资源引用的标签
var srcTags = map[string]bool{
	"script": true,
	"img":    true,
	"audio":  true,
	"video":  true,
	"source": true,
	"iframe": true,
}

// InvalidRef 无法解析为绝对URL的引用
// 按错误分类InvalidReference记录: 丢弃、写日志、计入失败
type InvalidRef struct {
	RawURL string // 原始引用字符串
	Reason string // 无法解析的原因
}

// HTMLCollector HTML资源收集器
// 职责: 解析入口HTML,枚举所有携带资源URL的属性,产出按解析后URL去重的初始引用集合
type HTMLCollector struct {
	// 基准URL(解析相对引用)
	base *url.URL

	// 按解析后URL去重
	seen map[string]struct{}

	// 收集到的引用(保持发现顺序,顺序对正确性无影响)
	refs []models.ResourceReference

	// 解析失败的引用(data:等非资源引用不在此列)
	invalid []InvalidRef
}

// NewHTMLCollector 创建HTML资源收集器
func NewHTMLCollector(baseURL string) (*HTMLCollector, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("解析基准URL失败: %w", err)
	}

	return &HTMLCollector{
		base: base,
		seen: make(map[string]struct{}),
		refs: make([]models.ResourceReference, 0),
	}, nil
}

// InvalidRefs 返回收集过程中无法解析的引用列表
func (hc *HTMLCollector) InvalidRefs() []InvalidRef {
	return hc.invalid
}

// Collect 从HTML文本中收集全部资源引用
// 扫描范围:
//   - link[href] / script[src] / img[src] / audio[src] / video[src] / source[src] / iframe[src]
//   - img[srcset] / source[srcset] (按逗号拆分,每个候选独立提取URL部分)
//   - meta[content] (msapplication-TileImage或property含image的标签)
//   - style属性和<style>块 (交给CSS提取器)
//
// a[href]是页面导航链接而非资源,不收集
func (hc *HTMLCollector) Collect(htmlContent string) ([]models.ResourceReference, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("解析HTML失败: %w", err)
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			hc.collectNode(n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return hc.refs, nil
}

// collectNode 处理单个元素节点
func (hc *HTMLCollector) collectNode(n *html.Node) {
	switch n.Data {
	case "link":
		if href := attrValue(n, "href"); href != "" {
			hc.addRef(href)
		}

	case "meta":
		// 仅收集图标/预览图类meta (参照msapplication-TileImage和og:image等)
		content := attrValue(n, "content")
		if content == "" {
			return
		}
		name := attrValue(n, "name")
		property := attrValue(n, "property")
		if name == "msapplication-TileImage" || strings.Contains(property, "image") {
			hc.addRef(content)
		}

	case "style":
		// <style>块内容交给CSS提取器
		if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			for _, ref := range ExtractCSS(n.FirstChild.Data) {
				hc.addRef(ref)
			}
		}

	default:
		if srcTags[n.Data] {
			if src := attrValue(n, "src"); src != "" {
				hc.addRef(src)
			}
			if srcset := attrValue(n, "srcset"); srcset != "" {
				hc.collectSrcset(srcset)
			}
		}
	}

	// 任意标签上的内联style属性也可能引用资源
	if style := attrValue(n, "style"); style != "" {
		for _, ref := range ExtractCSS(style) {
			hc.addRef(ref)
		}
	}
}

// collectSrcset 拆分srcset属性
// 格式: "url1 1x, url2 2x" - 按逗号拆分后取每段第一个字段
func (hc *HTMLCollector) collectSrcset(srcset string) {
	for _, candidate := range strings.Split(srcset, ",") {
		fields := strings.Fields(strings.TrimSpace(candidate))
		if len(fields) > 0 {
			hc.addRef(fields[0])
		}
	}
}

// addRef 解析引用并加入集合(按解析后URL去重)
func (hc *HTMLCollector) addRef(raw string) {
	resolved, err := Resolve(raw, hc.base)
	if err != nil {
		if errors.Is(err, ErrNotResource) {
			// data: URI等非资源引用静默跳过
			utils.Debugf("跳过非资源引用 [%s]: %v", raw, err)
			return
		}
		// 解析失败的引用记录下来,由引擎计入失败结果
		utils.Warnf("引用无法解析为绝对URL [%s]: %v", raw, err)
		hc.invalid = append(hc.invalid, InvalidRef{RawURL: raw, Reason: err.Error()})
		return
	}

	if _, ok := hc.seen[resolved]; ok {
		return
	}
	hc.seen[resolved] = struct{}{}

	hc.refs = append(hc.refs, models.ResourceReference{
		RawURL:      raw,
		ResolvedURL: resolved,
		Type:        ClassifyURL(resolved),
		Source:      models.SourceHTML,
	})
}

// attrValue 返回节点指定属性的值,不存在时返回空串
func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
