package journal

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Backend drivers accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Options selects and configures a Blobs backend.
type Options struct {
	Driver string
	Path   string // sqlite file
	URL    string // postgres connection string
	Codec  string
	Pool   PoolConfig
}

// Open connects the configured backend and wraps it in a Store.
func Open(ctx context.Context, opts Options, log zerolog.Logger) (*Store, error) {
	codec, err := CodecFor(opts.Codec)
	if err != nil {
		return nil, err
	}

	var blobs Blobs
	switch opts.Driver {
	case DriverSQLite, "":
		blobs, err = NewSQLite(opts.Path)
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
	case DriverPostgres:
		pool := opts.Pool
		if pool == (PoolConfig{}) {
			pool = DefaultPoolConfig()
		}
		blobs, err = NewPostgres(ctx, opts.URL, pool)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
	case DriverMemory:
		blobs = NewMemoryBlobs()
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}

	log.Debug().Str("driver", opts.Driver).Str("codec", codec.Name()).Msg("Journal store opened")
	return NewStore(blobs, codec, log), nil
}

// Close releases the backend.
func (s *Store) Close() error { return s.blobs.Close() }
