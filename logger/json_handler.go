package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// 日志以json写入w,调试时同时输出一行文本到标准输出
type JsonHandlerWithStdOutput struct {
	json slog.Handler
	// 标准输出,为nil时不输出
	std slog.Handler
}

func NewJsonHandlerWithStdOutput(w io.Writer, opts *slog.HandlerOptions, useStdOutput bool) *JsonHandlerWithStdOutput {
	return newJsonHandler(w, os.Stdout, opts, useStdOutput)
}

func newJsonHandler(w, std io.Writer, opts *slog.HandlerOptions, useStdOutput bool) *JsonHandlerWithStdOutput {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	h := &JsonHandlerWithStdOutput{
		json: slog.NewJSONHandler(w, opts),
	}
	if useStdOutput {
		h.std = slog.NewTextHandler(std, opts)
	}
	return h
}

func (h *JsonHandlerWithStdOutput) Enabled(ctx context.Context, level slog.Level) bool {
	return h.json.Enabled(ctx, level)
}

func (h *JsonHandlerWithStdOutput) WithAttrs(attrs []slog.Attr) slog.Handler {
	handler := &JsonHandlerWithStdOutput{
		json: h.json.WithAttrs(attrs),
	}
	if h.std != nil {
		handler.std = h.std.WithAttrs(attrs)
	}
	return handler
}

func (h *JsonHandlerWithStdOutput) WithGroup(name string) slog.Handler {
	handler := &JsonHandlerWithStdOutput{
		json: h.json.WithGroup(name),
	}
	if h.std != nil {
		handler.std = h.std.WithGroup(name)
	}
	return handler
}

func (h *JsonHandlerWithStdOutput) Handle(ctx context.Context, r slog.Record) error {
	if h.std != nil {
		_ = h.std.Handle(ctx, r.Clone())
	}
	return h.json.Handle(ctx, r)
}

// 只保留最后一级目录和文件名,让source简短些
func GetShortFileName(file string) string {
	idx := strings.LastIndexByte(file, '/')
	if idx >= 0 {
		idx = strings.LastIndexByte(file[:idx], '/')
		if idx >= 0 {
			return file[idx+1:]
		}
	}
	return file
}
