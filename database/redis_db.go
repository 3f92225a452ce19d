package database

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"
)

type RedisDatabase struct {
	client         *redis.Client
	ctx            context.Context
	memoryLimitMiB int64
}

// NewRedisDatabase initialises a redis client using the default settings
// from the API config.
func NewRedisDatabase(addr, password string, db int, memoryLimitMiB int64) *RedisDatabase {

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password, // default is no password
		DB:       db,       // default DB is 0
	})

	return &RedisDatabase{
		client:         rdb,
		ctx:            context.Background(),
		memoryLimitMiB: memoryLimitMiB,
	}
}

// CreateNamespace does nothing when using Redis; namespaces are key prefixes.
func (d *RedisDatabase) CreateNamespace(namespace string) error {
	return nil
}

func (d *RedisDatabase) Set(namespace string, id string, value string) error {
	err := d.client.Set(d.ctx, namespace+"|"+id, value, 0).Err()
	if err == redis.Nil {
		return fmt.Errorf("record '%v' not found", id)
	}
	return err
}

func (d *RedisDatabase) Get(namespace string, id string) (string, bool) {
	value, err := d.client.Get(d.ctx, namespace+"|"+id).Result()
	if err == redis.Nil {
		return "", false
	} else if err != nil {
		return value, false
	}
	return value, true
}

func (d *RedisDatabase) Delete(namespace string, id string) bool {
	_, err := d.client.Del(d.ctx, namespace+"|"+id).Result()
	if err != nil {
		return false
	}
	return true
}

func (d *RedisDatabase) Ping() error {
	return d.client.Ping(d.ctx).Err()
}

func (d *RedisDatabase) List(namespace string) ([]string, error) {
	value, err := d.client.Keys(d.ctx, namespace+"|*").Result()
	if err != nil {
		return value, err
	}
	prefixLen := len(namespace) + 1
	for i, s := range value {
		value[i] = s[prefixLen:]
	}
	return value, nil
}

// DoTransaction watches a record, gets its value, performs an operation, and
// sets it again. If the record changes under WATCH the whole transaction
// fails and no write happens.
func (d *RedisDatabase) DoTransaction(transactionFunc func(string) (string, error), namespace string, id string) error {

	key := namespace + "|" + id
	err := d.client.Watch(d.ctx, func(tx *redis.Tx) error {

		value, err := tx.Get(d.ctx, key).Result()
		if err == redis.Nil {
			return &RecordNotFoundError{}
		} else if err != nil {
			return err
		}

		value, err = transactionFunc(value)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(d.ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(d.ctx, key, value, 0)
			return nil
		})
		return err
	}, key)

	if err == redis.TxFailedErr {
		return &TransactionFailedError{}
	}

	return err
}

// Health checks memory usage against the configured limit.
func (d *RedisDatabase) Health() error {
	info, err := d.client.Info(d.ctx, "memory").Result()
	if err != nil {
		return err
	}
	for _, line := range strings.Split(info, "\r\n") {
		if strings.HasPrefix(line, "used_memory:") {
			usage, err := strconv.ParseInt(strings.TrimPrefix(line, "used_memory:"), 10, 64)
			if err != nil {
				return nil
			}
			limit := d.memoryLimitMiB * 1024 * 1024
			if limit > 0 && usage > limit {
				return &MemoryUsageError{usage: usage, limit: limit}
			}
			return nil
		}
	}
	return nil
}
