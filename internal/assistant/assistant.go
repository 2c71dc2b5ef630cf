package assistant

import (
	"log/slog"

	"dcfassist/internal/action"
	"dcfassist/internal/embedding"
	"dcfassist/internal/llm"
	"dcfassist/internal/logging"
)

// Config 模型名称与检索参数
type Config struct {
	ChatModel    string
	SummaryModel string
	ChunkSize    int
	ChunkOverlap int
	TopK         int
}

// DefaultConfig 默认参数
func DefaultConfig() Config {
	return Config{
		ChatModel:    "gpt-4-turbo-preview",
		SummaryModel: "gpt-4o-mini",
		ChunkSize:    embedding.DefaultChunkSize,
		ChunkOverlap: embedding.DefaultChunkOverlap,
		TopK:         3,
	}
}

// Assistant 模型生成、文档摘要与对话
type Assistant struct {
	completer llm.Completer
	embedder  embedding.Embedder
	validator *action.Validator
	cfg       Config
	logger    *slog.Logger
}

// New 创建助手；completer 为 nil 时生成与摘要使用兜底结果，对话返回 llm.ErrNotConfigured
func New(completer llm.Completer, embedder embedding.Embedder, validator *action.Validator, cfg Config, logger *slog.Logger) *Assistant {
	if logger == nil {
		logger = logging.Nop()
	}
	if validator == nil {
		validator = action.NewValidator(action.DefaultOptions(), logger)
	}
	def := DefaultConfig()
	if cfg.ChatModel == "" {
		cfg.ChatModel = def.ChatModel
	}
	if cfg.SummaryModel == "" {
		cfg.SummaryModel = def.SummaryModel
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = def.ChunkSize
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = def.ChunkOverlap
	}
	if cfg.TopK <= 0 {
		cfg.TopK = def.TopK
	}
	return &Assistant{
		completer: completer,
		embedder:  embedder,
		validator: validator,
		cfg:       cfg,
		logger:    logger,
	}
}

// Validator 对话与导出共用的动作校验器
func (a *Assistant) Validator() *action.Validator {
	return a.validator
}
