// Package download transfers a byte range of a remote object in fixed size chunks using a bounded
// number of parallel connections.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

const (
	DefaultChunkSize      int64 = 4 * 1024 * 1024
	DefaultMaxConnections       = 2
)

// ErrInvalidRange is returned when the requested range does not fit the object.
var ErrInvalidRange = errors.New("invalid range")

// RangeSource is a remote object that can be read by byte range.
type RangeSource interface {
	Size(ctx context.Context) (int64, error)
	ReadRange(ctx context.Context, offset, count int64) (io.ReadCloser, error)
}

// ProgressFunc receives the number of bytes written so far and the total number of bytes of the
// transfer. Calls are serialized and current never decreases.
type ProgressFunc func(current, total int64)

// Options configures a transfer.
type Options struct {
	ChunkSize      int64
	MaxConnections int
	// Start is the first byte to transfer.
	Start int64
	// End is the last byte to transfer, inclusive. A negative value means the end of the object.
	End      int64
	Progress ProgressFunc
}

type chunk struct {
	offset int64
	count  int64
}

// Download copies the selected range of src into dst. Byte Start of the source lands at offset
// zero of dst. The first failing chunk cancels the outstanding ones; its error is returned once
// all workers have stopped.
func Download(ctx context.Context, src RangeSource, dst io.WriterAt, opts Options) (int64, error) {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.MaxConnections <= 0 {
		opts.MaxConnections = DefaultMaxConnections
	}

	size, err := src.Size(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get object size: %w", err)
	}
	start, end, err := resolveRange(opts.Start, opts.End, size)
	if err != nil {
		return 0, err
	}
	total := end - start + 1
	if size == 0 {
		total = 0
	}

	prog := &progress{total: total, fn: opts.Progress}
	prog.add(0)
	if total == 0 {
		return 0, nil
	}

	chunks := split(start, total, opts.ChunkSize)
	zap.L().Sugar().Debugf("downloading %d bytes in %d chunks using %d connections", total, len(chunks), opts.MaxConnections)

	p := pool.New().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(opts.MaxConnections)
	for _, c := range chunks {
		p.Go(func(ctx context.Context) error {
			n, err := fetch(ctx, src, dst, c, c.offset-start)
			if err != nil {
				return err
			}
			prog.add(n)
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return prog.value(), err
	}
	return total, nil
}

func resolveRange(start, end, size int64) (int64, int64, error) {
	if start < 0 {
		return 0, 0, fmt.Errorf("%w: start %d is negative", ErrInvalidRange, start)
	}
	if size == 0 {
		if start > 0 {
			return 0, 0, fmt.Errorf("%w: start %d beyond empty object", ErrInvalidRange, start)
		}
		return 0, -1, nil
	}
	if end < 0 || end >= size {
		end = size - 1
	}
	if start > end {
		return 0, 0, fmt.Errorf("%w: start %d is after end %d (size %d)", ErrInvalidRange, start, end, size)
	}
	return start, end, nil
}

func split(start, total, chunkSize int64) []chunk {
	chunks := make([]chunk, 0, (total+chunkSize-1)/chunkSize)
	for off := int64(0); off < total; off += chunkSize {
		chunks = append(chunks, chunk{
			offset: start + off,
			count:  min(chunkSize, total-off),
		})
	}
	return chunks
}

func fetch(ctx context.Context, src RangeSource, dst io.WriterAt, c chunk, at int64) (int64, error) {
	rc, err := src.ReadRange(ctx, c.offset, c.count)
	if err != nil {
		return 0, fmt.Errorf("failed to read range %d-%d: %w", c.offset, c.offset+c.count-1, err)
	}
	defer rc.Close()

	buf := make([]byte, c.count)
	n, err := io.ReadFull(rc, buf)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("short read for range %d-%d: got %d of %d bytes", c.offset, c.offset+c.count-1, n, c.count)
		}
		return 0, fmt.Errorf("failed to read range %d-%d: %w", c.offset, c.offset+c.count-1, err)
	}
	if _, err := dst.WriteAt(buf, at); err != nil {
		return 0, fmt.Errorf("failed to write %d bytes at offset %d: %w", len(buf), at, err)
	}
	return int64(n), nil
}

type progress struct {
	mu      sync.Mutex
	current int64
	total   int64
	fn      ProgressFunc
}

func (p *progress) add(n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current += n
	if p.fn != nil {
		p.fn(p.current, p.total)
	}
}

func (p *progress) value() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}
