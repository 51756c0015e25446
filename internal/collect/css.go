package collect

import (
	"regexp"
	"sort"
	"strings"
)

var (
	// cssURLPattern 匹配 url(...) 引用,兼容单双引号和无引号形式
	cssURLPattern = regexp.MustCompile(`url\(\s*["']?([^"')\s]+)["']?\s*\)`)

	// cssImportPattern 匹配 @import 语句,兼容字符串形式和url()形式
	cssImportPattern = regexp.MustCompile(`@import\s+(?:url\()?["']?([^"')\s;]+)["']?\)?`)
)

// ExtractCSS 从样式表文本中提取资源引用字符串
// 提取 url(...) 引用(忽略data: URI)和 @import 语句(字符串/url()两种形式)
// 对畸形CSS永不报错: 无法匹配的片段只是产出更少的引用(尽力而为)
// 结果按出现顺序去重
func ExtractCSS(cssContent string) []string {
	type match struct {
		pos int
		ref string
	}

	matches := make([]match, 0)
	for _, m := range cssURLPattern.FindAllStringSubmatchIndex(cssContent, -1) {
		matches = append(matches, match{pos: m[0], ref: cssContent[m[2]:m[3]]})
	}
	for _, m := range cssImportPattern.FindAllStringSubmatchIndex(cssContent, -1) {
		matches = append(matches, match{pos: m[0], ref: cssContent[m[2]:m[3]]})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].pos < matches[j].pos })

	seen := make(map[string]struct{})
	refs := make([]string, 0)
	for _, m := range matches {
		ref := strings.TrimSpace(m.ref)
		if ref == "" {
			continue
		}
		// data: URI是内联内容,不是外部资源
		if strings.HasPrefix(strings.ToLower(ref), "data:") {
			continue
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}

	return refs
}
