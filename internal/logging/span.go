package logging

import (
	"context"
	"log/slog"
	"time"
)

// Span times one named operation and logs its outcome when it ends.
type Span struct {
	name   string
	path   string
	base   *slog.Logger
	logger *slog.Logger
	start  time.Time
	err    error
}

// StartSpan derives a child span from ctx. Nested spans are logged with a
// slash-separated path, e.g. "upload video/storage put", and inherit the
// attributes the outermost span started with.
func StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	if ctx == nil {
		ctx = context.Background()
	}

	path := name
	base := FromContext(ctx)
	if parent, ok := ctx.Value(spanKey).(*Span); ok && parent != nil {
		path = parent.path + "/" + name
		base = parent.base
	}

	logger := base.With(slog.String("span", path))
	span := &Span{
		name:   name,
		path:   path,
		base:   base,
		logger: logger,
		start:  time.Now(),
	}

	ctx = WithLogger(ctx, logger)
	ctx = context.WithValue(ctx, spanKey, span)
	return ctx, span
}

// Fail records err as the span's outcome. A nil err is ignored.
func (s *Span) Fail(err error) {
	if s == nil || err == nil {
		return
	}
	s.err = err
}

// End emits a completion entry; failed spans are logged as warnings.
func (s *Span) End() {
	if s == nil {
		return
	}
	elapsed := slog.Duration("duration", time.Since(s.start))
	if s.err != nil {
		s.logger.Warn("span failed", elapsed, slog.Any("error", s.err))
		return
	}
	s.logger.Debug("span completed", elapsed)
}
