package assistant

import (
	"context"

	"dcfassist/internal/embedding"
	"dcfassist/internal/session"
)

// IngestDocument 生成模型、摘要与检索索引，返回待保存的会话
// 向量生成失败不影响上传，会话只是没有检索能力
func (a *Assistant) IngestDocument(ctx context.Context, filename, text string) *session.Session {
	sess := &session.Session{
		Filename:  filename,
		Text:      text,
		ModelData: a.GenerateModel(ctx, text),
		Summary:   a.Summarize(ctx, text, filename),
	}

	chunks := embedding.Chunk(text, a.cfg.ChunkSize, a.cfg.ChunkOverlap)
	if len(chunks) == 0 || a.embedder == nil {
		sess.Index = embedding.Index{Chunks: chunks}
		return sess
	}

	ix, err := embedding.Build(ctx, a.embedder, chunks)
	if err != nil {
		a.logger.Warn("embedding generation failed, search disabled for document", "file", filename, "error", err)
		sess.Index = embedding.Index{Chunks: chunks}
		return sess
	}
	sess.Index = *ix
	return sess
}
