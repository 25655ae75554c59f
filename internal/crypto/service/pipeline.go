package service

import (
	"context"
	"errors"
	"io"

	cryptoDomain "github.com/allisson/secrethold/internal/crypto/domain"
)

// DefaultChunkSize is the read size used when streaming through a pipeline.
const DefaultChunkSize = 32 * 1024

// Pipeline chains stages so the output of one stage is the input of the next.
type Pipeline struct {
	stages    []Stage
	chunkSize int
}

// NewPipeline returns a pipeline running stages in the given order.
func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages, chunkSize: DefaultChunkSize}
}

// Process pushes src through every stage, leaving the result in dst.
func (p *Pipeline) Process(dst, src []byte) error {
	in := src
	for _, stage := range p.stages {
		if err := stage.Process(dst, in); err != nil {
			return err
		}
		in = dst[:len(src)]
	}
	return nil
}

// Finalize finalizes every stage and returns their tags in stage order. All stages are
// finalized even when one fails, and the first failure is returned.
func (p *Pipeline) Finalize() ([][]byte, error) {
	tags := make([][]byte, len(p.stages))
	var firstErr error
	for i, stage := range p.stages {
		tag, err := stage.Finalize()
		if err != nil && firstErr == nil {
			firstErr = err
		}
		tags[i] = tag
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return tags, nil
}

// Stream copies src to dst through the pipeline one chunk at a time. ctx is checked before
// every chunk. Finalize is left to the caller.
func (p *Pipeline) Stream(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, p.chunkSize)
	defer cryptoDomain.Zero(buf)

	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			if err := p.Process(buf[:n], buf[:n]); err != nil {
				return written, err
			}
			w, err := dst.Write(buf[:n])
			written += int64(w)
			if err != nil {
				return written, err
			}
			if w != n {
				return written, io.ErrShortWrite
			}
		}
		if errors.Is(readErr, io.EOF) {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}
