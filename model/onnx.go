//go:build cgo
// +build cgo

package model

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

const onnxMaxTokens = 256

// OnnxEmbedder runs a pretrained sentence-embedding model in process via
// ONNX Runtime. The model is loaded once at construction; Embed is a pure,
// synchronous computation and its vectors are L2-normalized so cosine
// similarity reduces to dot product.
type OnnxEmbedder struct {
	session *ort.AdvancedSession
	dim     int

	inputIDs      *ort.Tensor[int64]
	attentionMask *ort.Tensor[int64]
	tokenTypeIDs  *ort.Tensor[int64]
	output        *ort.Tensor[float32]

	// The session holds fixed tensors, so inference is serialized.
	mu sync.Mutex
}

func NewOnnxEmbedder(modelPath string, dim int) (*OnnxEmbedder, error) {
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("initialize onnx runtime: %w", err)
	}

	ids, mask, typeIDs := tokenize("", onnxMaxTokens)

	inputIDs, err := ort.NewTensor(ort.NewShape(1, int64(onnxMaxTokens)), ids)
	if err != nil {
		return nil, fmt.Errorf("create input_ids tensor: %w", err)
	}
	attentionMask, err := ort.NewTensor(ort.NewShape(1, int64(onnxMaxTokens)), mask)
	if err != nil {
		inputIDs.Destroy()
		return nil, fmt.Errorf("create attention_mask tensor: %w", err)
	}
	tokenTypeIDs, err := ort.NewTensor(ort.NewShape(1, int64(onnxMaxTokens)), typeIDs)
	if err != nil {
		inputIDs.Destroy()
		attentionMask.Destroy()
		return nil, fmt.Errorf("create token_type_ids tensor: %w", err)
	}
	output, err := ort.NewTensor(ort.NewShape(1, int64(dim)), make([]float32, dim))
	if err != nil {
		inputIDs.Destroy()
		attentionMask.Destroy()
		tokenTypeIDs.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"output"},
		[]ort.ArbitraryTensor{inputIDs, attentionMask, tokenTypeIDs},
		[]ort.ArbitraryTensor{output},
		nil,
	)
	if err != nil {
		inputIDs.Destroy()
		attentionMask.Destroy()
		tokenTypeIDs.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("load onnx model %s: %w", modelPath, err)
	}

	return &OnnxEmbedder{
		session:       session,
		dim:           dim,
		inputIDs:      inputIDs,
		attentionMask: attentionMask,
		tokenTypeIDs:  tokenTypeIDs,
		output:        output,
	}, nil
}

// Embed runs inference per text, preserving input order.
func (e *OnnxEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, 0, len(texts))
	for _, text := range texts {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		vec, err := e.embedOne(text)
		if err != nil {
			return nil, err
		}
		vecs = append(vecs, vec)
	}
	return vecs, nil
}

func (e *OnnxEmbedder) embedOne(text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids, mask, typeIDs := tokenize(text, onnxMaxTokens)
	copy(e.inputIDs.GetData(), ids)
	copy(e.attentionMask.GetData(), mask)
	copy(e.tokenTypeIDs.GetData(), typeIDs)

	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("onnx inference: %w", err)
	}

	vec := make([]float32, e.dim)
	copy(vec, e.output.GetData()[:e.dim])
	normalize(vec)
	return vec, nil
}

// Close releases the session and its tensors.
func (e *OnnxEmbedder) Close() error {
	var err error
	if e.session != nil {
		err = e.session.Destroy()
		e.session = nil
	}
	for _, t := range []*ort.Tensor[int64]{e.inputIDs, e.attentionMask, e.tokenTypeIDs} {
		if t != nil {
			_ = t.Destroy()
		}
	}
	if e.output != nil {
		_ = e.output.Destroy()
		e.output = nil
	}
	e.inputIDs, e.attentionMask, e.tokenTypeIDs = nil, nil, nil
	return err
}
