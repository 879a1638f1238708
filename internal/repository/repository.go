package repository

import (
	"context"
	"errors"
	"fmt"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"os"
	"time"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "repository").Logger()

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
	// ErrConflict means a conditional update matched the id but not the
	// expected previous state.
	ErrConflict = errors.New("document changed concurrently")
)

const (
	OrdersCollection   = "orders"
	ProductsCollection = "products"
	UsersCollection    = "users"
	SettingsCollection = "settings"
)

// ConnectOptions configures the process wide client.
type ConnectOptions struct {
	URI                    string
	MaxPoolSize            uint64
	ServerSelectionTimeout time.Duration
	SocketTimeout          time.Duration
	Retries                int
}

// Connect builds one client (and its connection pool) and pings the primary,
// retrying a few times while the database comes up.
func Connect(ctx context.Context, opts ConnectOptions) (*mongo.Client, error) {
	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetMaxPoolSize(opts.MaxPoolSize).
		SetServerSelectionTimeout(opts.ServerSelectionTimeout).
		SetSocketTimeout(opts.SocketTimeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	retries := opts.Retries
	if retries < 1 {
		retries = 1
	}
	for i := 0; i < retries; i++ {
		err = client.Ping(ctx, readpref.Primary())
		if err == nil {
			logger.Info().Msg("Connected to MongoDB")
			return client, nil
		}
		logger.Warn().Err(err).Msgf("Retry %d: failed to reach MongoDB", i+1)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}

	_ = client.Disconnect(context.Background())
	return nil, fmt.Errorf("failed to reach MongoDB after %d retries: %w", retries, err)
}

// mapError translates driver errors into the repository sentinels.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}
