package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/fish-tennis/bagserver/db"
	"github.com/fish-tennis/bagserver/item"
	"github.com/go-redis/redis/v8"
)

var _ db.BagContainerLookup = (*BagCache)(nil)

const (
	defaultTimeout = 3 * time.Second
)

// 背包存储的redis实现
// bag:{uid}:contents 物品列表(protowire编码)
// bag:{uid}:state    开关状态
type BagCache struct {
	redisClient redis.Cmdable
	keyPrefix   string
	registry    *item.Registry
	timeout     time.Duration
}

func NewBagCache(redisClient redis.Cmdable, keyPrefix string, registry *item.Registry) *BagCache {
	if keyPrefix == "" {
		keyPrefix = "bag"
	}
	return &BagCache{
		redisClient: redisClient,
		keyPrefix:   keyPrefix,
		registry:    registry,
		timeout:     defaultTimeout,
	}
}

func (b *BagCache) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		b.timeout = timeout
	}
}

func (b *BagCache) Find(stack *item.Stack) (db.BagContainer, bool) {
	if _, ok := stack.Bag(); !ok {
		return nil, false
	}
	return (*bagCacheContainer)(b), true
}

func (b *BagCache) contentsKey(uid int64) string {
	return b.keyPrefix + ":" + strconv.FormatInt(uid, 10) + ":contents"
}

func (b *BagCache) stateKey(uid int64) string {
	return b.keyPrefix + ":" + strconv.FormatInt(uid, 10) + ":state"
}

type bagCacheContainer BagCache

func (c *bagCacheContainer) Contents(stack *item.Stack) ([]*item.Stack, error) {
	if stack.Uid == 0 {
		return db.EmptyContents(stack), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	data, err := c.redisClient.Get(ctx, (*BagCache)(c).contentsKey(stack.Uid)).Bytes()
	if err == redis.Nil {
		return db.EmptyContents(stack), nil
	}
	if IsRedisError(err) {
		return nil, fmt.Errorf("%w: %v", db.ErrStoreUnavailable, err)
	}
	contents, err := item.ConsumeStacks(data, c.registry)
	if err != nil {
		slog.Error("BagContentsDecodeErr", "uid", stack.Uid, "err", err)
		return nil, err
	}
	return contents, nil
}

func (c *bagCacheContainer) SetContents(stack *item.Stack, contents []*item.Stack) error {
	uid := db.EnsureUid(stack)
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	data := item.AppendStacks(nil, contents)
	if err := c.redisClient.Set(ctx, (*BagCache)(c).contentsKey(uid), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", db.ErrStoreUnavailable, err)
	}
	return nil
}

func (c *bagCacheContainer) SetState(stack *item.Stack, state db.BagState) error {
	uid := db.EnsureUid(stack)
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	if err := c.redisClient.Set(ctx, (*BagCache)(c).stateKey(uid), int32(state), 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", db.ErrStoreUnavailable, err)
	}
	return nil
}
