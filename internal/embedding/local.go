//go:build llamacpp

package embedding

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	llama "github.com/tcpipuk/llama-go"
)

// LocalProvider implements Provider using an embedded GGUF sentence model
// via llama-go. No external API dependency. Thread-safe: llama contexts are
// not, so all model access is serialized through a mutex.
type LocalProvider struct {
	modelPath   string
	gpuLayers   int
	contextSize int

	mu sync.Mutex

	// Lazy-loaded resources
	model   *llama.Model
	embCtx  *llama.Context
	dim     int
	loadErr error
	once    sync.Once
}

// LocalConfig configures the local embedding provider.
type LocalConfig struct {
	// ModelPath is the path to the GGUF embedding model file.
	ModelPath string

	// GPULayers is the number of layers to offload to GPU (0 = CPU only).
	GPULayers int

	// ContextSize is the context window size in tokens. The profile
	// linearizer's character budget is chosen to fit this window.
	ContextSize int
}

// NewLocalProvider creates a LocalProvider. The model is not loaded until
// first use.
func NewLocalProvider(cfg LocalConfig) *LocalProvider {
	ctxSize := cfg.ContextSize
	if ctxSize <= 0 {
		ctxSize = 512
	}
	return &LocalProvider{
		modelPath:   cfg.ModelPath,
		gpuLayers:   cfg.GPULayers,
		contextSize: ctxSize,
	}
}

// Available returns true if the model file exists on disk. Cheap check,
// does not load the model.
func (p *LocalProvider) Available() bool {
	if p.modelPath == "" {
		return false
	}
	_, err := os.Stat(p.modelPath)
	return err == nil
}

// loadModel lazy-loads the embedding model and context on first use.
func (p *LocalProvider) loadModel() error {
	p.once.Do(func() {
		if p.modelPath == "" {
			p.loadErr = fmt.Errorf("no model path configured")
			return
		}

		model, err := llama.LoadModel(p.modelPath,
			llama.WithGPULayers(p.gpuLayers),
			llama.WithMMap(true),
			llama.WithSilentLoading(),
		)
		if err != nil {
			p.loadErr = fmt.Errorf("loading model %s: %w", p.modelPath, err)
			return
		}
		p.model = model

		ctx, err := model.NewContext(
			llama.WithEmbeddings(),
			llama.WithContext(p.contextSize),
			llama.WithThreads(runtime.NumCPU()),
		)
		if err != nil {
			model.Close()
			p.model = nil
			p.loadErr = fmt.Errorf("creating embedding context: %w", err)
			return
		}
		p.embCtx = ctx
	})
	return p.loadErr
}

// Embed returns a dense vector embedding for the given text.
func (p *LocalProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := p.loadModel(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	emb, err := p.embCtx.GetEmbeddings(text)
	if err != nil {
		return nil, fmt.Errorf("%w: getting embeddings: %v", ErrEmbedding, err)
	}
	if p.dim == 0 {
		p.dim = len(emb)
	}
	return emb, nil
}

// EmbedBatch embeds each text in order through the single model context.
func (p *LocalProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		emb, err := p.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = emb
	}
	return out, nil
}

// Dimension returns the model's vector length, or 0 before the first Embed.
func (p *LocalProvider) Dimension() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dim
}

// Close releases the model and context resources. Safe to call multiple
// times.
func (p *LocalProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.embCtx != nil {
		p.embCtx.Close()
		p.embCtx = nil
	}
	if p.model != nil {
		p.model.Close()
		p.model = nil
	}
	return nil
}
