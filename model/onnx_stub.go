//go:build !cgo
// +build !cgo

package model

import (
	"context"
	"errors"
)

// OnnxEmbedder stub when built without CGO; see onnx.go for the real one.
type OnnxEmbedder struct{}

func NewOnnxEmbedder(_ string, _ int) (*OnnxEmbedder, error) {
	return nil, errors.New("local embedding backend requires CGO; build with CGO_ENABLED=1 and the onnxruntime library")
}

func (e *OnnxEmbedder) Embed(_ context.Context, _ []string) ([][]float32, error) {
	return nil, errors.New("local embedding backend not built")
}

func (e *OnnxEmbedder) Close() error { return nil }
