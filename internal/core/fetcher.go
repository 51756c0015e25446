package core

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/RecoveryAshes/webmirror/internal/utils"
	"github.com/andybalholm/brotli"
	"github.com/gocolly/colly/v2"
)

const (
	// DefaultUserAgent 默认User-Agent
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"
)

// Fetcher HTTP获取层抽象
// 下载引擎只依赖该接口,测试中可用桩实现替换真实网络
type Fetcher interface {
	// Fetch 获取URL内容
	// 返回: 响应体(已解压)、Content-Type、错误(网络错误或非2xx状态)
	Fetch(rawURL string) (body []byte, contentType string, err error)
}

// FetchFunc 函数适配器,允许普通函数实现Fetcher接口
type FetchFunc func(rawURL string) ([]byte, string, error)

// Fetch 实现Fetcher接口
func (f FetchFunc) Fetch(rawURL string) ([]byte, string, error) {
	return f(rawURL)
}

// HTTPFetcher 基于Colly的HTTP获取器
// 整条流水线一次只有一个请求在途,响应暂存字段无并发访问
type HTTPFetcher struct {
	collector *colly.Collector

	// 单次Fetch的响应暂存
	body        []byte
	contentType string
	fetchErr    error
}

// NewHTTPFetcher 创建HTTP获取器
// 使用自定义HTTP客户端: 禁用TLS证书验证(允许自签名/过期证书站点)、可配置超时
func NewHTTPFetcher(timeoutSeconds int) *HTTPFetcher {
	httpTimeout := time.Duration(timeoutSeconds) * time.Second

	httpClient := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, // 跳过证书验证,允许访问自签名、过期或主机名不匹配的HTTPS站点
			},
		},
		Timeout: httpTimeout,
	}

	// 同步模式: Visit阻塞直到响应处理完成,符合单请求在途的节流设计
	c := colly.NewCollector(
		colly.IgnoreRobotsTxt(),
		colly.AllowURLRevisit(),
	)
	c.SetClient(httpClient)
	c.SetRequestTimeout(httpTimeout)

	f := &HTTPFetcher{collector: c}

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", DefaultUserAgent)
		r.Headers.Set("Accept", "*/*")
		r.Headers.Set("Accept-Encoding", "gzip, deflate, br")
		utils.Debugf("请求: %s", r.URL.String())
	})

	c.OnResponse(func(r *colly.Response) {
		body := r.Body

		// 手动设置了Accept-Encoding,响应体需要按Content-Encoding手动解压
		contentEncoding := r.Headers.Get("Content-Encoding")
		if contentEncoding != "" {
			decompressed, err := decompressResponse(contentEncoding, r.Body)
			if err != nil {
				utils.Warnf("解压响应失败 [%s] (编码=%s): %v", r.Request.URL, contentEncoding, err)
				// 解压失败,仍然尝试使用原始body
			} else {
				body = decompressed
			}
		}

		f.body = body
		f.contentType = r.Headers.Get("Content-Type")
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode > 0 {
			f.fetchErr = fmt.Errorf("HTTP %d: %w", r.StatusCode, err)
		} else {
			f.fetchErr = err
		}
	})

	return f
}

// Fetch 获取URL内容
func (f *HTTPFetcher) Fetch(rawURL string) ([]byte, string, error) {
	// 清空上一次的暂存
	f.body = nil
	f.contentType = ""
	f.fetchErr = nil

	if err := f.collector.Visit(rawURL); err != nil {
		if f.fetchErr != nil {
			return nil, "", f.fetchErr
		}
		return nil, "", err
	}

	if f.fetchErr != nil {
		return nil, "", f.fetchErr
	}

	return f.body, f.contentType, nil
}

// decompressResponse 根据Content-Encoding头部解压响应体
// 支持 gzip, deflate, br (Brotli) 三种压缩格式
func decompressResponse(contentEncoding string, body []byte) ([]byte, error) {
	encoding := strings.ToLower(strings.TrimSpace(contentEncoding))

	switch encoding {
	case "gzip":
		reader, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("gzip解压失败: %w", err)
		}
		defer reader.Close()

		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("gzip读取失败: %w", err)
		}
		return decompressed, nil

	case "deflate":
		reader := flate.NewReader(bytes.NewReader(body))
		defer reader.Close()

		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("deflate读取失败: %w", err)
		}
		return decompressed, nil

	case "br":
		reader := brotli.NewReader(bytes.NewReader(body))
		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("brotli读取失败: %w", err)
		}
		return decompressed, nil

	case "":
		// 没有压缩,直接返回原始内容
		return body, nil

	default:
		// 未知编码,返回警告但仍然返回原始内容
		utils.Warnf("未知的Content-Encoding: %s", contentEncoding)
		return body, nil
	}
}
