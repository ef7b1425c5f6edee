// Package redisstore keeps verification codes in Redis hashes, one key per recipient.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-mail-verify/internal/domain"
	rdb "github.com/redis/go-redis/v9"
)

const keyPrefix = "verification:"

// consumeLua deletes the hash only while it still holds the expected code.
const consumeLua = `
if redis.call('HGET', KEYS[1], 'code') == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`

var consumeScript = rdb.NewScript(consumeLua)

// VerificationRepo is the Redis-backed alternative to dynamo.VerificationRepo.
type VerificationRepo struct {
	client *rdb.Client
}

func NewClient(addr string, db int) *rdb.Client {
	return rdb.NewClient(&rdb.Options{Addr: addr, DB: db})
}

func NewVerificationRepo(client *rdb.Client) *VerificationRepo {
	return &VerificationRepo{client: client}
}

func key(recipient string) string { return keyPrefix + recipient }

// Put replaces the hash atomically and sets its expiry to PurgeAt.
func (r *VerificationRepo) Put(ctx context.Context, v *domain.VerificationRecord) error {
	k := key(v.Recipient)
	_, err := r.client.TxPipelined(ctx, func(pipe rdb.Pipeliner) error {
		pipe.Del(ctx, k)
		pipe.HSet(ctx, k, "code", v.Code, "expires_at", v.ExpiresAt)
		if v.PurgeAt > 0 {
			pipe.ExpireAt(ctx, k, time.Unix(v.PurgeAt, 0))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put verification: %w", err)
	}
	return nil
}

func (r *VerificationRepo) Get(ctx context.Context, recipient string) (*domain.VerificationRecord, error) {
	fields, err := r.client.HGetAll(ctx, key(recipient)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get verification: %w", err)
	}
	return recordFromHash(recipient, fields)
}

// Consume deletes the record only while it still holds code.
func (r *VerificationRepo) Consume(ctx context.Context, recipient, code string) error {
	return consumeResult(consumeScript.Run(ctx, r.client, []string{key(recipient)}, code).Int64())
}

// consumeResult maps the script reply: zero keys deleted means another
// redemption or a reissue got there first.
func consumeResult(deleted int64, err error) error {
	if err != nil && !errors.Is(err, rdb.Nil) {
		return fmt.Errorf("redis consume verification: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("verification already consumed: %w", domain.ErrNotFound)
	}
	return nil
}

func recordFromHash(recipient string, fields map[string]string) (*domain.VerificationRecord, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("verification not found: %w", domain.ErrNotFound)
	}
	expiresAt, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse expires_at for %s: %w", recipient, err)
	}
	return &domain.VerificationRecord{
		Recipient: recipient,
		Code:      fields["code"],
		ExpiresAt: expiresAt,
	}, nil
}
