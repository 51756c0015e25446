package core

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/RecoveryAshes/webmirror/internal/models"
	"github.com/RecoveryAshes/webmirror/internal/utils"
)

// Rewriter 路径改写器
// 下载完成后把入口HTML和已下载CSS中的外部引用改写为本地相对路径,
// 使镜像站点离线可用
type Rewriter struct {
	// 站点根目录(输出目录的父目录,入口HTML所在位置)
	siteRoot string

	// URL映射表: 原始引用/绝对URL -> 站点相对路径
	urlMap map[string]string
}

// NewRewriter 创建路径改写器
func NewRewriter(outputDir string, urlMap map[string]string) *Rewriter {
	return &Rewriter{
		siteRoot: filepath.Dir(outputDir),
		urlMap:   urlMap,
	}
}

// Run 执行路径改写: 入口HTML就地改写,每个下载成功的CSS文件就地改写
func (rw *Rewriter) Run(htmlPath string, results []*models.DownloadResult) error {
	if len(rw.urlMap) == 0 {
		utils.Debug("URL映射表为空,跳过路径改写")
		return nil
	}

	if err := rw.RewriteHTML(htmlPath); err != nil {
		return err
	}

	for _, result := range results {
		if !result.Success || result.Type != models.TypeCSS {
			continue
		}
		if err := rw.RewriteCSS(result.FilePath); err != nil {
			// CSS改写失败不致命,记录后继续
			utils.Warnf("CSS路径改写失败 [%s]: %v", result.FilePath, err)
		}
	}

	return nil
}

// RewriteHTML 把HTML中的资源引用替换为本地相对路径(就地修改)
// URL按长度降序替换,避免长URL被其前缀子串抢先破坏
func (rw *Rewriter) RewriteHTML(htmlPath string) error {
	data, err := os.ReadFile(htmlPath)
	if err != nil {
		return fmt.Errorf("读取HTML文件失败: %w", err)
	}

	content := string(data)
	original := content

	for _, originalURL := range rw.sortedURLs() {
		localPath := rw.urlMap[originalURL]

		// 引号包裹的常规属性值
		content = strings.ReplaceAll(content, `"`+originalURL+`"`, `"`+localPath+`"`)
		content = strings.ReplaceAll(content, `'`+originalURL+`'`, `'`+localPath+`'`)
		// srcset等以空格结尾的场合
		content = strings.ReplaceAll(content, originalURL+" ", localPath+" ")
	}

	if content == original {
		utils.Debugf("HTML无需改写: %s", htmlPath)
		return nil
	}

	if err := os.WriteFile(htmlPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("写入HTML文件失败: %w", err)
	}

	utils.Infof("✅ HTML路径改写完成: %s", htmlPath)
	return nil
}

// RewriteCSS 把CSS文件中的资源引用替换为相对该CSS文件目录的路径(就地修改)
func (rw *Rewriter) RewriteCSS(cssPath string) error {
	data, err := os.ReadFile(cssPath)
	if err != nil {
		return fmt.Errorf("读取CSS文件失败: %w", err)
	}

	content := string(data)
	original := content
	cssDir := filepath.Dir(cssPath)

	for _, originalURL := range rw.sortedURLs() {
		localPath := rw.urlMap[originalURL]

		// 站点相对路径换算成相对CSS文件目录的路径 (如 ../images/b.png)
		target := filepath.Join(rw.siteRoot, filepath.FromSlash(localPath))
		rel, err := filepath.Rel(cssDir, target)
		if err != nil {
			continue
		}
		relSlash := filepath.ToSlash(rel)

		// 只替换url()和引号包裹的出现位置,避免误伤普通文本中的子串
		content = strings.ReplaceAll(content, "url("+originalURL+")", "url("+relSlash+")")
		content = strings.ReplaceAll(content, `url("`+originalURL+`")`, `url("`+relSlash+`")`)
		content = strings.ReplaceAll(content, `url('`+originalURL+`')`, `url('`+relSlash+`')`)
		content = strings.ReplaceAll(content, `"`+originalURL+`"`, `"`+relSlash+`"`)
		content = strings.ReplaceAll(content, `'`+originalURL+`'`, `'`+relSlash+`'`)
	}

	if content == original {
		return nil
	}

	if err := os.WriteFile(cssPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("写入CSS文件失败: %w", err)
	}

	utils.Infof("✅ CSS路径改写完成: %s", cssPath)
	return nil
}

// sortedURLs 返回映射表键,按长度降序(等长时按字典序,保证确定性)
func (rw *Rewriter) sortedURLs() []string {
	keys := make([]string, 0, len(rw.urlMap))
	for k := range rw.urlMap {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}
