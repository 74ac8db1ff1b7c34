package rankclaim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// EnsureBucket creates or opens the rank bucket.
//
// Several processes of a world start at once and race to create the bucket;
// losers open the bucket the winner created. Transient failures are retried
// with exponential backoff.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - js: JetStream context
//   - name: Bucket name
//   - ttl: Lifetime of an unrenewed claim
//
// Returns:
//   - jetstream.KeyValue: The bucket
//   - error: Error after all retries
//
// Example:
//
//	kv, err := rankclaim.EnsureBucket(ctx, js, "stencil-ranks", 30*time.Second)
func EnsureBucket(ctx context.Context, js jetstream.JetStream, name string, ttl time.Duration) (jetstream.KeyValue, error) {
	const maxRetries = 3

	config := jetstream.KeyValueConfig{
		Bucket:  name,
		TTL:     ttl,
		Storage: jetstream.MemoryStorage,
	}

	var lastErr error
	for attempt := range maxRetries {
		kv, err := js.CreateKeyValue(ctx, config)
		if err == nil {
			return kv, nil
		}

		if errors.Is(err, jetstream.ErrBucketExists) {
			kv, err := js.KeyValue(ctx, name)
			if err == nil {
				return kv, nil
			}
			lastErr = fmt.Errorf("bucket exists but failed to open: %w", err)
		} else {
			lastErr = err
		}

		if ctx.Err() != nil {
			return nil, fmt.Errorf("context cancelled during rank bucket creation: %w", ctx.Err())
		}

		if attempt < maxRetries-1 {
			backoff := time.Duration(1<<attempt) * 10 * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("failed to create/open rank bucket %s after %d attempts: %w", name, maxRetries, lastErr)
}
