package vectorstore

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Options selects and configures a Store backend.
type Options struct {
	// Provider is "qdrant" or "chromem".
	Provider string

	// Collection is the collection name all operations are bound to.
	Collection string

	// Host and Port locate the Qdrant gRPC endpoint.
	Host string
	Port int

	// UseTLS enables TLS for the Qdrant connection.
	UseTLS bool

	// Path is the chromem persistence directory; empty means in-memory.
	Path string

	// MaxRetries and RetryBackoff tune the Qdrant retry schedule.
	MaxRetries   int
	RetryBackoff time.Duration
}

// New creates a Store for the selected provider.
func New(opts Options, logger *zap.Logger) (Store, error) {
	switch opts.Provider {
	case "", "qdrant":
		return NewQdrantStore(QdrantConfig{
			Host:           opts.Host,
			Port:           opts.Port,
			CollectionName: opts.Collection,
			UseTLS:         opts.UseTLS,
			MaxRetries:     opts.MaxRetries,
			RetryBackoff:   opts.RetryBackoff,
		}, logger)
	case "chromem":
		return NewChromemStore(ChromemConfig{
			Path:           opts.Path,
			CollectionName: opts.Collection,
		}, logger)
	default:
		return nil, fmt.Errorf("%w: unknown vector store provider %q", ErrInvalidConfig, opts.Provider)
	}
}
