// Package receipts keeps the client's only post-submission state: one receipt per identity in Redis.
package receipts

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "eligibility-workers/internal/common/errors"
	"eligibility-workers/internal/models"
)

const keyPrefix = "eligibility:receipt:"

// UnknownBlock is passed to MarkConfirmed when the submission was seen in ledger state rather than
// in a transaction receipt. The stored block number is left as it was.
const UnknownBlock uint64 = 0

// Store is the receipt capability used by the submission and verdict clients.
type Store interface {
	Save(ctx context.Context, receipt *models.SubmissionReceipt) error
	Get(ctx context.Context, identity string) (*models.SubmissionReceipt, error)
	MarkConfirmed(ctx context.Context, identity string, blockNumber uint64, at time.Time) error
}

type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Key is the Redis key holding identity's receipt. Identities compare case-insensitively.
func Key(identity string) string {
	return keyPrefix + strings.ToLower(identity)
}

func (s *RedisStore) Save(ctx context.Context, receipt *models.SubmissionReceipt) error {
	data, err := json.Marshal(receipt)
	if err != nil {
		return apperrors.NewReceiptStoreError(fmt.Errorf("marshal receipt: %w", err))
	}
	if err := s.client.Set(ctx, Key(receipt.Identity), data, s.ttl).Err(); err != nil {
		return apperrors.NewReceiptStoreError(err)
	}
	return nil
}

// Get returns nil, nil when no receipt is stored for identity.
func (s *RedisStore) Get(ctx context.Context, identity string) (*models.SubmissionReceipt, error) {
	val, err := s.client.Get(ctx, Key(identity)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewReceiptStoreError(err)
	}

	var receipt models.SubmissionReceipt
	if err := json.Unmarshal([]byte(val), &receipt); err != nil {
		return nil, apperrors.NewReceiptStoreError(fmt.Errorf("unmarshal receipt: %w", err))
	}
	return &receipt, nil
}

func (s *RedisStore) MarkConfirmed(ctx context.Context, identity string, blockNumber uint64, at time.Time) error {
	receipt, err := s.Get(ctx, identity)
	if err != nil {
		return err
	}
	if receipt == nil {
		return apperrors.NewReceiptStoreError(fmt.Errorf("no receipt for %s", strings.ToLower(identity)))
	}

	confirmedAt := at.UTC()
	receipt.Status = models.SubmissionConfirmed
	if blockNumber != UnknownBlock {
		receipt.BlockNumber = blockNumber
	}
	receipt.ConfirmedAt = &confirmedAt
	return s.Save(ctx, receipt)
}
