package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"dcfassist/internal/action"
	"dcfassist/internal/assistant"
	"dcfassist/internal/document"
	"dcfassist/internal/logging"
	"dcfassist/internal/modelcheck"
	"dcfassist/internal/session"
)

// DefaultMaxUploadBytes 上传 PDF 的大小上限
const DefaultMaxUploadBytes = 32 << 20

// Deps 处理器依赖
type Deps struct {
	Validator      *action.Validator
	Assistant      *assistant.Assistant
	Checker        *modelcheck.Checker
	Sessions       session.Store
	Extractor      document.Extractor
	Logger         *slog.Logger
	MaxUploadBytes int64
}

// Handler API 处理器
type Handler struct {
	validator      *action.Validator
	assistant      *assistant.Assistant
	checker        *modelcheck.Checker
	sessions       session.Store
	extractor      document.Extractor
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewHandler 创建 API 处理器，未提供的依赖使用默认实现
func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	validator := d.Validator
	if validator == nil {
		validator = action.NewValidator(action.DefaultOptions(), logger)
	}
	asst := d.Assistant
	if asst == nil {
		asst = assistant.New(nil, nil, validator, assistant.DefaultConfig(), logger)
	}
	checker := d.Checker
	if checker == nil {
		checker = modelcheck.NewChecker(nil, "", logger)
	}
	sessions := d.Sessions
	if sessions == nil {
		sessions = session.NewMemoryStore()
	}
	extractor := d.Extractor
	if extractor == nil {
		extractor = document.PDFExtractor{}
	}
	maxUpload := d.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}

	return &Handler{
		validator:      validator,
		assistant:      asst,
		checker:        checker,
		sessions:       sessions,
		extractor:      extractor,
		logger:         logger,
		maxUploadBytes: maxUpload,
	}
}

// RegisterRoutes 注册 /api 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 动作校验
	router.POST("/actions/validate", h.ValidateActions)

	// 文档上传与会话
	router.POST("/upload-pdf", h.UploadPDF)
	router.GET("/sessions/:id", h.GetSession)
	router.DELETE("/sessions/:id", h.DeleteSession)

	// 模型检查与对话
	router.POST("/check-errors", h.CheckErrors)
	router.POST("/chat", h.Chat)
	router.POST("/sensitivity", h.Sensitivity)

	// 导出
	router.POST("/export", h.Export)
}
