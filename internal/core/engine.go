package core

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/RecoveryAshes/webmirror/internal/collect"
	"github.com/RecoveryAshes/webmirror/internal/models"
	"github.com/RecoveryAshes/webmirror/internal/utils"
	"github.com/schollz/progressbar/v3"
)

// unsafeFilenameChars 文件名中需要替换为下划线的字符
var unsafeFilenameChars = regexp.MustCompile(`[^\w\-.]`)

// Engine 下载引擎
// 单个引用的状态机: pending -> fetching -> {succeeded, failed}
// 失败(网络错误/非2xx/写入失败)不致命,继续处理下一个引用
//
// 引擎是待处理队列和结果列表的唯一所有者,整个运行期单goroutine顺序执行
type Engine struct {
	config  models.MirrorConfig
	fetcher Fetcher

	// 待处理队列(CSS二级资源在消费过程中追加,这是运行中唯一产生新工作的地方)
	queue *collect.RefQueue

	// 结果列表(完成顺序)
	results []*models.DownloadResult

	// URL映射表: 原始引用/绝对URL -> 相对本地路径(供路径改写使用)
	urlMap map[string]string

	// 本次运行已占用的输出路径: 路径 -> 占用它的URL
	// 同名冲突的判定只看本次运行,不探测磁盘,保证多次运行结果确定
	claimedPaths map[string]string

	// 已记录为invalid_reference的原始引用(避免重复计失败)
	invalidSeen map[string]struct{}

	// 进度条
	bar *progressbar.ProgressBar
}

// NewEngine 创建下载引擎
func NewEngine(config models.MirrorConfig, fetcher Fetcher) *Engine {
	return &Engine{
		config:       config,
		fetcher:      fetcher,
		queue:        collect.NewRefQueue(),
		results:      make([]*models.DownloadResult, 0),
		urlMap:       make(map[string]string),
		claimedPaths: make(map[string]string),
		invalidSeen:  make(map[string]struct{}),
	}
}

// Run 执行下载
// initial: HTML收集器产出的初始引用集合
// invalid: 收集阶段解析失败的引用(计入失败结果)
// 队列耗尽(没有新引用可发现)时终止
func (e *Engine) Run(initial []models.ResourceReference, invalid []collect.InvalidRef) []*models.DownloadResult {
	for _, inv := range invalid {
		e.recordInvalid(inv.RawURL, inv.Reason)
	}

	for _, ref := range initial {
		e.queue.Push(ref)
	}

	utils.Infof("📋 初始资源: %d个, 解析失败: %d个", e.queue.PendingCount(), len(invalid))

	e.bar = utils.NewProgressBar(e.queue.PendingCount(), "下载资源")

	for {
		ref, ok := e.queue.Pop()
		if !ok {
			break
		}
		e.process(ref)
		_ = e.bar.Add(1)
	}

	fmt.Println()
	return e.results
}

// URLMap 返回URL映射表(原始引用/绝对URL -> 相对本地路径)
func (e *Engine) URLMap() map[string]string {
	return e.urlMap
}

// process 处理单个引用: 延迟 -> 下载 -> 分类修正 -> 写盘 -> CSS二级发现
func (e *Engine) process(ref models.ResourceReference) {
	// 每次请求前的固定延迟(节流,避免给目标服务器造成压力)
	if e.config.Delay > 0 {
		time.Sleep(time.Duration(e.config.Delay * float64(time.Second)))
	}

	utils.Infof("📥 下载中: %s", ref.ResolvedURL)

	body, contentType, err := e.fetcher.Fetch(ref.ResolvedURL)
	if err != nil {
		utils.Errorf("下载失败 [%s]: %v", ref.ResolvedURL, err)
		e.results = append(e.results, &models.DownloadResult{
			URL:          ref.ResolvedURL,
			Type:         ref.Type,
			Success:      false,
			ErrorType:    models.ErrFetch,
			ErrorMsg:     err.Error(),
			DownloadedAt: time.Now(),
		})
		return
	}

	// 超过大小上限的资源按下载失败处理
	if sizeErr := models.ValidateSize(int64(len(body))); sizeErr != nil {
		utils.Errorf("资源超限 [%s]: %v", ref.ResolvedURL, sizeErr)
		e.results = append(e.results, &models.DownloadResult{
			URL:          ref.ResolvedURL,
			Type:         ref.Type,
			Success:      false,
			Size:         int64(len(body)),
			ErrorType:    models.ErrFetch,
			ErrorMsg:     sizeErr.Error(),
			DownloadedAt: time.Now(),
		})
		return
	}

	// 扩展名判不出类型时用Content-Type二次分类
	rtype := ref.Type
	if rtype == models.TypeOther {
		if refined, ok := collect.ClassifyContentType(contentType); ok {
			rtype = refined
		}
	}

	filePath, err := e.bucketPath(ref.ResolvedURL, rtype)
	if err == nil {
		if mkErr := os.MkdirAll(filepath.Dir(filePath), 0755); mkErr != nil {
			err = fmt.Errorf("创建目录失败: %w", mkErr)
		} else if wrErr := os.WriteFile(filePath, body, 0644); wrErr != nil {
			err = fmt.Errorf("写入文件失败: %w", wrErr)
		}
	}
	if err != nil {
		utils.Errorf("保存失败 [%s]: %v", ref.ResolvedURL, err)
		e.results = append(e.results, &models.DownloadResult{
			URL:          ref.ResolvedURL,
			Type:         rtype,
			Success:      false,
			ErrorType:    models.ErrWrite,
			ErrorMsg:     err.Error(),
			DownloadedAt: time.Now(),
		})
		return
	}

	e.results = append(e.results, &models.DownloadResult{
		URL:          ref.ResolvedURL,
		Type:         rtype,
		FilePath:     filePath,
		Success:      true,
		Size:         int64(len(body)),
		DownloadedAt: time.Now(),
	})

	// 记录URL映射(原始引用和绝对URL都指向同一本地相对路径)
	relPath := e.siteRelativePath(filePath)
	e.urlMap[ref.RawURL] = relPath
	e.urlMap[ref.ResolvedURL] = relPath

	utils.Infof("✅ 下载成功: %s (%d bytes)", filepath.Base(filePath), len(body))

	// CSS文件回灌提取器,发现二级资源
	if rtype == models.TypeCSS {
		e.discoverFromCSS(ref.ResolvedURL, body)
	}
}

// discoverFromCSS 从已下载的CSS内容中发现二级资源
// 相对url()目标以该CSS文件自身的URL为基准解析,而非页面基准URL
func (e *Engine) discoverFromCSS(cssURL string, body []byte) {
	base, err := url.Parse(cssURL)
	if err != nil {
		return
	}

	discovered := 0
	for _, raw := range collect.ExtractCSS(string(body)) {
		resolved, err := collect.Resolve(raw, base)
		if err != nil {
			if errors.Is(err, collect.ErrNotResource) {
				continue
			}
			utils.Warnf("CSS中的引用无法解析 [%s] (来自 %s): %v", raw, cssURL, err)
			e.recordInvalid(raw, err.Error())
			continue
		}

		pushed := e.queue.Push(models.ResourceReference{
			RawURL:      raw,
			ResolvedURL: resolved,
			Type:        collect.ClassifyURL(resolved),
			Source:      models.SourceCSS,
			SourceURL:   cssURL,
		})
		if pushed {
			discovered++
		}
	}

	if discovered > 0 {
		utils.Infof("🔍 从CSS发现二级资源: %d个 (来自 %s)", discovered, cssURL)
		if e.bar != nil {
			e.bar.ChangeMax(e.bar.GetMax() + discovered)
		}
	}
}

// recordInvalid 记录一个无法解析的引用为失败结果
// 同一原始引用只记录一次
func (e *Engine) recordInvalid(rawURL string, reason string) {
	if _, ok := e.invalidSeen[rawURL]; ok {
		return
	}
	e.invalidSeen[rawURL] = struct{}{}

	e.results = append(e.results, &models.DownloadResult{
		URL:          rawURL,
		Type:         models.TypeOther,
		Success:      false,
		ErrorType:    models.ErrInvalidReference,
		ErrorMsg:     reason,
		DownloadedAt: time.Now(),
	})
}

// bucketPath 计算资源的本地保存路径: {output}/{bucket}/{filename}
//
// 文件名规则:
//   - 取URL路径的最后一段,非法字符替换为下划线
//   - 路径为空时回退为index.{默认扩展名}
//   - 查询串净化后追加到文件名(与原始URL区分缓存参数)
//   - 同名但URL不同的冲突: 追加URL的SHA-256前8位,保证多次运行命名一致
func (e *Engine) bucketPath(resolvedURL string, rtype models.ResourceType) (string, error) {
	parsed, err := url.Parse(resolvedURL)
	if err != nil {
		return "", fmt.Errorf("解析URL失败: %w", err)
	}

	filename := path.Base(parsed.Path)
	if filename == "" || filename == "." || filename == "/" {
		filename = "index" + defaultExtension(rtype)
	}

	if parsed.RawQuery != "" {
		filename += "_" + parsed.RawQuery
	}

	filename = unsafeFilenameChars.ReplaceAllString(filename, "_")

	fullPath := filepath.Join(e.config.OutputDir, rtype.BucketDir(), filename)

	// 冲突检查只针对本次运行中的其他URL;同一URL不会走到这里(队列已去重)
	if claimedBy, exists := e.claimedPaths[fullPath]; exists && claimedBy != resolvedURL {
		ext := filepath.Ext(filename)
		base := strings.TrimSuffix(filename, ext)
		sum := sha256.Sum256([]byte(resolvedURL))
		filename = fmt.Sprintf("%s_%x%s", base, sum[:4], ext)
		fullPath = filepath.Join(e.config.OutputDir, rtype.BucketDir(), filename)
	}

	e.claimedPaths[fullPath] = resolvedURL
	return fullPath, nil
}

// siteRelativePath 把绝对保存路径转换为站点相对路径
// 例: www/assets/css/a.css -> assets/css/a.css (入口HTML旁的相对引用)
func (e *Engine) siteRelativePath(filePath string) string {
	rel, err := filepath.Rel(filepath.Dir(e.config.OutputDir), filePath)
	if err != nil {
		return filepath.ToSlash(filePath)
	}
	return filepath.ToSlash(rel)
}

// defaultExtension 类型对应的默认扩展名(URL路径为空时使用)
func defaultExtension(rtype models.ResourceType) string {
	switch rtype {
	case models.TypeCSS:
		return ".css"
	case models.TypeJS:
		return ".js"
	case models.TypeImage:
		return ".png"
	case models.TypeFont:
		return ".woff"
	case models.TypeVideo:
		return ".mp4"
	default:
		return ".bin"
	}
}
