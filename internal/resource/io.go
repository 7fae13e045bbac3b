package resource

import (
	"context"
	"io"
)

type limitedReader struct {
	ctx context.Context
	r   io.Reader
	rc  *Controller
}

// NewReader returns r throttled by the controller's IO limit.
func (c *Controller) NewReader(ctx context.Context, r io.Reader) io.Reader {
	if c == nil || c.ioLimiter == nil {
		return r
	}
	return &limitedReader{ctx: ctx, r: r, rc: c}
}

func (r *limitedReader) Read(p []byte) (int, error) {
	p = p[:r.rc.ioChunk(len(p))]
	if err := r.rc.AcquireIO(r.ctx, len(p)); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

type limitedWriter struct {
	ctx context.Context
	w   io.Writer
	rc  *Controller
}

// NewWriter returns w throttled by the controller's IO limit.
func (c *Controller) NewWriter(ctx context.Context, w io.Writer) io.Writer {
	if c == nil || c.ioLimiter == nil {
		return w
	}
	return &limitedWriter{ctx: ctx, w: w, rc: c}
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	written := 0
	for len(p) > 0 {
		chunk := p[:w.rc.ioChunk(len(p))]
		if err := w.rc.AcquireIO(w.ctx, len(chunk)); err != nil {
			return written, err
		}
		n, err := w.w.Write(chunk)
		written += n
		if err != nil {
			return written, err
		}
		p = p[n:]
	}
	return written, nil
}
