// Package server 提供镜像结果的本地预览服务器
//
// 把下载好的assets目录和入口HTML作为静态文件暴露在本地HTTP端口上,
// 用于打包前的人工预览。除"从输出目录提供静态文件"外没有其他契约。
package server

import (
	"net/http"
	"time"

	"github.com/RecoveryAshes/webmirror/internal/utils"
	"github.com/gorilla/mux"
)

// Server 本地预览服务器
type Server struct {
	addr      string
	siteDir   string // 站点根目录(入口HTML所在目录)
	assetsDir string // 镜像资源目录
	router    *mux.Router
}

// New 创建预览服务器
func New(addr string, siteDir string, assetsDir string) *Server {
	s := &Server{
		addr:      addr,
		siteDir:   siteDir,
		assetsDir: assetsDir,
		router:    mux.NewRouter(),
	}
	s.routes()
	return s
}

// routes 注册路由
// /assets/ 下提供镜像资源目录,其余路径提供站点根目录
func (s *Server) routes() {
	s.router.Use(loggingMiddleware)

	s.router.PathPrefix("/assets/").Handler(
		http.StripPrefix("/assets/", http.FileServer(http.Dir(s.assetsDir))))
	s.router.PathPrefix("/").Handler(
		http.FileServer(http.Dir(s.siteDir)))
}

// Router 返回HTTP处理器(测试用)
func (s *Server) Router() http.Handler {
	return s.router
}

// Start 启动服务器(阻塞)
func (s *Server) Start() error {
	utils.Infof("🌐 预览服务器启动: http://localhost%s (站点目录: %s)", s.addr, s.siteDir)
	return http.ListenAndServe(s.addr, s.router)
}

// loggingMiddleware 访问日志中间件
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		utils.Logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("HTTP请求")
	})
}
