package platform

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/jotter/pkg/adapters/fs"
	"github.com/aretw0/jotter/pkg/adapters/memory"
	"github.com/aretw0/jotter/pkg/adapters/redis"
	"github.com/aretw0/jotter/pkg/adapters/s3"
	"github.com/aretw0/jotter/pkg/adapters/sqlite"
	"github.com/aretw0/jotter/pkg/core"
)

// ErrUnknownAdapter is returned for adapter names outside Adapters.
var ErrUnknownAdapter = errors.New("unknown adapter")

// openMedium builds the medium selected by o. A nil medium with a nil error
// means storage is deliberately unavailable ("none").
func openMedium(ctx context.Context, o *options) (core.Medium, error) {
	if o.medium != nil {
		return o.medium, nil
	}

	switch o.adapter {
	case AdapterMemory, "":
		return memory.New(), nil
	case AdapterNone:
		return nil, nil
	case AdapterFS:
		fsOpts := []fs.Option{
			fs.WithLogger(o.logger),
			fs.WithDebounce(orDefault(o.debounce, fs.DefaultDebounce)),
			fs.WithErrorHandler(o.watchErr),
		}
		if o.history {
			fsOpts = append(fsOpts, fs.WithHistory())
		}
		m, err := fs.New(o.path, fsOpts...)
		if err != nil {
			return nil, err
		}
		return m, nil
	case AdapterSQLite:
		m, err := sqlite.Open(ctx, o.path, sqlite.WithLogger(o.logger))
		if err != nil {
			return nil, err
		}
		return m, nil
	case AdapterRedis:
		m, err := redis.Open(ctx, o.redisAddr, redis.WithLogger(o.logger))
		if err != nil {
			return nil, err
		}
		return m, nil
	case AdapterS3:
		m, err := s3.Open(ctx, o.s3, s3.WithLogger(o.logger))
		if err != nil {
			return nil, err
		}
		if err := m.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAdapter, o.adapter)
	}
}

func orDefault[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
