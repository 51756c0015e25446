package core

import (
	"crypto/sha256"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/RecoveryAshes/webmirror/internal/collect"
	"github.com/RecoveryAshes/webmirror/internal/models"
)

// stubFetcher 返回预置响应的桩获取器
type stubFetcher struct {
	responses map[string]stubResponse
}

type stubResponse struct {
	body        string
	contentType string
}

func (s *stubFetcher) Fetch(rawURL string) ([]byte, string, error) {
	resp, ok := s.responses[rawURL]
	if !ok {
		return nil, "", fmt.Errorf("HTTP 404: Not Found")
	}
	return []byte(resp.body), resp.contentType, nil
}

func engineConfig(outputDir string) models.MirrorConfig {
	return models.MirrorConfig{
		InputFile: "index.html",
		OutputDir: outputDir,
		LogDir:    filepath.Join(outputDir, "logs"),
		BaseURL:   "https://example.com/",
		Delay:     0,
		Timeout:   30,
	}
}

func collectFromHTML(t *testing.T, baseURL string, htmlContent string) ([]models.ResourceReference, []collect.InvalidRef) {
	t.Helper()
	hc, err := collect.NewHTMLCollector(baseURL)
	if err != nil {
		t.Fatalf("创建收集器失败: %v", err)
	}
	refs, err := hc.Collect(htmlContent)
	if err != nil {
		t.Fatalf("收集失败: %v", err)
	}
	return refs, hc.InvalidRefs()
}

func TestEngineCSSSecondOrderDiscovery(t *testing.T) {
	// 入口HTML只引用a.css,a.css内部引用b.png
	// 两个文件都应落盘,统计为2个资源全部成功
	outputDir := filepath.Join(t.TempDir(), "assets")

	fetcher := &stubFetcher{responses: map[string]stubResponse{
		"https://example.com/a.css": {
			body:        `body { background: url(b.png); }`,
			contentType: "text/css",
		},
		"https://example.com/b.png": {
			body:        "PNG数据",
			contentType: "image/png",
		},
	}}

	refs, invalid := collectFromHTML(t, "https://example.com/",
		`<link rel="stylesheet" href="a.css">`)

	engine := NewEngine(engineConfig(outputDir), fetcher)
	results := engine.Run(refs, invalid)

	if len(results) != 2 {
		t.Fatalf("期望2个结果, 得到 %d: %+v", len(results), results)
	}
	for _, r := range results {
		if !r.Success {
			t.Errorf("期望全部成功, 失败: %s (%s)", r.URL, r.ErrorMsg)
		}
	}

	cssPath := filepath.Join(outputDir, "css", "a.css")
	pngPath := filepath.Join(outputDir, "images", "b.png")
	if _, err := os.Stat(cssPath); err != nil {
		t.Errorf("CSS文件未落盘: %v", err)
	}
	if data, err := os.ReadFile(pngPath); err != nil {
		t.Errorf("二级资源未落盘: %v", err)
	} else if string(data) != "PNG数据" {
		t.Errorf("二级资源内容错误: %q", data)
	}

	// URL映射: 原始引用和绝对URL都指向站点相对路径
	urlMap := engine.URLMap()
	if urlMap["a.css"] != "assets/css/a.css" {
		t.Errorf("原始引用映射错误: %q", urlMap["a.css"])
	}
	if urlMap["https://example.com/b.png"] != "assets/images/b.png" {
		t.Errorf("绝对URL映射错误: %q", urlMap["https://example.com/b.png"])
	}
}

func TestEnginePartialFailure(t *testing.T) {
	// b.png下载失败: 总数2, 成功1, 失败1, 失败结果带非空错误信息
	outputDir := filepath.Join(t.TempDir(), "assets")

	fetcher := &stubFetcher{responses: map[string]stubResponse{
		"https://example.com/a.css": {
			body:        `body { background: url(b.png); }`,
			contentType: "text/css",
		},
		// b.png 故意缺失 -> 404
	}}

	refs, invalid := collectFromHTML(t, "https://example.com/",
		`<link rel="stylesheet" href="a.css">`)

	engine := NewEngine(engineConfig(outputDir), fetcher)
	results := engine.Run(refs, invalid)

	if len(results) != 2 {
		t.Fatalf("期望2个结果, 得到 %d", len(results))
	}

	succeeded, failed := 0, 0
	for _, r := range results {
		if r.Success {
			succeeded++
			continue
		}
		failed++
		if r.ErrorType != models.ErrFetch {
			t.Errorf("错误类型错误: 期望 %s, 得到 %s", models.ErrFetch, r.ErrorType)
		}
		if r.ErrorMsg == "" {
			t.Error("失败结果应带有非空错误信息")
		}
	}
	if succeeded != 1 || failed != 1 {
		t.Errorf("期望成功1失败1, 得到成功%d失败%d", succeeded, failed)
	}
}

func TestEngineInvalidReferenceCountsAsFailed(t *testing.T) {
	outputDir := filepath.Join(t.TempDir(), "assets")

	engine := NewEngine(engineConfig(outputDir), &stubFetcher{})
	results := engine.Run(nil, []collect.InvalidRef{
		{RawURL: "ftp://example.com/x.js", Reason: "不支持的协议"},
		{RawURL: "ftp://example.com/x.js", Reason: "不支持的协议"}, // 重复只记一次
	})

	if len(results) != 1 {
		t.Fatalf("期望1个失败结果, 得到 %d", len(results))
	}
	r := results[0]
	if r.Success {
		t.Error("解析失败引用应计入失败")
	}
	if r.ErrorType != models.ErrInvalidReference {
		t.Errorf("错误类型错误: 期望 %s, 得到 %s", models.ErrInvalidReference, r.ErrorType)
	}
}

func TestEngineContentTypeRefinement(t *testing.T) {
	// 无扩展名URL(other)按Content-Type修正分类
	outputDir := filepath.Join(t.TempDir(), "assets")

	fetcher := &stubFetcher{responses: map[string]stubResponse{
		"https://example.com/dynamic-style": {
			body:        "body{}",
			contentType: "text/css; charset=utf-8",
		},
	}}

	refs, _ := collectFromHTML(t, "https://example.com/",
		`<link rel="stylesheet" href="dynamic-style">`)

	engine := NewEngine(engineConfig(outputDir), fetcher)
	results := engine.Run(refs, nil)

	if len(results) != 1 {
		t.Fatalf("期望1个结果, 得到 %d", len(results))
	}
	if results[0].Type != models.TypeCSS {
		t.Errorf("类型应按Content-Type修正为css, 得到 %s", results[0].Type)
	}
	if filepath.Base(filepath.Dir(results[0].FilePath)) != "css" {
		t.Errorf("文件应保存在css目录: %s", results[0].FilePath)
	}
}

func TestEngineFilenameCollision(t *testing.T) {
	// 不同URL同名文件: 第一个保留原名,第二个追加URL哈希前缀
	outputDir := filepath.Join(t.TempDir(), "assets")

	urlA := "https://example.com/x/app.js"
	urlB := "https://example.com/y/app.js"

	fetcher := &stubFetcher{responses: map[string]stubResponse{
		urlA: {body: "aaa", contentType: "application/javascript"},
		urlB: {body: "bbb", contentType: "application/javascript"},
	}}

	refs, _ := collectFromHTML(t, "https://example.com/", `
<script src="x/app.js"></script>
<script src="y/app.js"></script>`)

	engine := NewEngine(engineConfig(outputDir), fetcher)
	results := engine.Run(refs, nil)

	if len(results) != 2 {
		t.Fatalf("期望2个结果, 得到 %d", len(results))
	}

	sum := sha256.Sum256([]byte(urlB))
	wantA := filepath.Join(outputDir, "js", "app.js")
	wantB := filepath.Join(outputDir, "js", fmt.Sprintf("app_%x.js", sum[:4]))

	if data, err := os.ReadFile(wantA); err != nil || string(data) != "aaa" {
		t.Errorf("第一个文件内容错误: %q, err=%v", data, err)
	}
	if data, err := os.ReadFile(wantB); err != nil || string(data) != "bbb" {
		t.Errorf("冲突文件应带哈希后缀: %q, err=%v", data, err)
	}
}

func TestEngineQueryStringInFilename(t *testing.T) {
	// 查询串净化后并入文件名,区分不同的缓存参数
	outputDir := filepath.Join(t.TempDir(), "assets")

	fetcher := &stubFetcher{responses: map[string]stubResponse{
		"https://example.com/app.js?v=1.2": {body: "v12", contentType: "application/javascript"},
	}}

	refs, _ := collectFromHTML(t, "https://example.com/",
		`<script src="app.js?v=1.2"></script>`)

	engine := NewEngine(engineConfig(outputDir), fetcher)
	results := engine.Run(refs, nil)

	if len(results) != 1 || !results[0].Success {
		t.Fatalf("下载失败: %+v", results)
	}
	want := filepath.Join(outputDir, "js", "app.js_v_1.2")
	if results[0].FilePath != want {
		t.Errorf("文件名错误: 期望 %s, 得到 %s", want, results[0].FilePath)
	}
}

// snapshotTree 收集目录下全部文件的 相对路径->内容 映射
func snapshotTree(t *testing.T, root string) map[string]string {
	t.Helper()
	tree := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		tree[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("遍历输出目录失败: %v", err)
	}
	return tree
}

func TestEngineDeterministicAcrossRuns(t *testing.T) {
	// 相同输入跑两次,输出文件树应逐字节一致
	fetcher := &stubFetcher{responses: map[string]stubResponse{
		"https://example.com/a.css":    {body: `@import "c.css"; body { background: url(b.png); }`, contentType: "text/css"},
		"https://example.com/b.png":    {body: "PNG", contentType: "image/png"},
		"https://example.com/c.css":    {body: "h1{}", contentType: "text/css"},
		"https://example.com/x/app.js": {body: "aaa", contentType: "application/javascript"},
		"https://example.com/y/app.js": {body: "bbb", contentType: "application/javascript"},
	}}

	htmlContent := `
<link rel="stylesheet" href="a.css">
<script src="x/app.js"></script>
<script src="y/app.js"></script>`

	run := func() map[string]string {
		outputDir := filepath.Join(t.TempDir(), "assets")
		refs, invalid := collectFromHTML(t, "https://example.com/", htmlContent)
		engine := NewEngine(engineConfig(outputDir), fetcher)
		engine.Run(refs, invalid)
		return snapshotTree(t, outputDir)
	}

	first := run()
	second := run()

	if len(first) != len(second) {
		t.Fatalf("两次运行文件数不同: %d vs %d", len(first), len(second))
	}
	for rel, content := range first {
		got, ok := second[rel]
		if !ok {
			t.Errorf("第二次运行缺少文件: %s", rel)
			continue
		}
		if got != content {
			t.Errorf("文件内容不一致: %s", rel)
		}
	}
}
