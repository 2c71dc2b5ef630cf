package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"

	"dcfassist/internal/api"
	"dcfassist/internal/config"
	"dcfassist/internal/logging"
)

// Server HTTP服务器
type Server struct {
	router  *gin.Engine
	handler *api.Handler
	cfg     config.ServerConfig
	logger  *slog.Logger
	http    *http.Server
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig, handler *api.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		router:  gin.Default(),
		handler: handler,
		cfg:     cfg.Server,
		logger:  logger,
	}

	s.setupRoutes()

	return s
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// CORS
	s.router.Use(func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" && s.originAllowed(origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Expose-Headers", "Content-Disposition, X-Rejected-Actions")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	s.router.GET("/health", s.handler.Health)

	// API 路由
	apiGroup := s.router.Group("/api")
	{
		s.handler.RegisterRoutes(apiGroup)
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
}

// originAllowed 开发模式或配置了 "*" 时放行所有来源
func (s *Server) originAllowed(origin string) bool {
	if s.cfg.DevMode || slices.Contains(s.cfg.AllowedOrigins, "*") {
		return true
	}
	return slices.Contains(s.cfg.AllowedOrigins, origin)
}

// Handler 返回路由（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器，配置了证书时使用 HTTPS
func (s *Server) Run(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var err error
	if s.TLSEnabled() {
		s.logger.Info("server listening", "addr", addr, "tls", true)
		err = s.http.ListenAndServeTLS(s.cfg.TLSCertFile, s.cfg.TLSKeyFile)
	} else {
		s.logger.Info("server listening", "addr", addr, "tls", false)
		err = s.http.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// TLSEnabled 是否同时配置了证书与私钥
func (s *Server) TLSEnabled() bool {
	return s.cfg.TLSCertFile != "" && s.cfg.TLSKeyFile != ""
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
