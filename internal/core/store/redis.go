package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const maxTxRetries = 5

// RedisStore keeps each collection as a hash of JSON documents plus a sorted
// set holding insertion order. Changes are announced on a pub/sub channel so
// live queries see writes from every instance.
type RedisStore struct {
	client   *redis.Client
	prefix   string
	notifier *notifier
	pubsub   *redis.PubSub
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewRedisStore connects the change feed and starts delivering notifications
func NewRedisStore(ctx context.Context, client *redis.Client, prefix string) (*RedisStore, error) {
	if prefix == "" {
		prefix = "advisor:"
	}
	s := &RedisStore{
		client: client,
		prefix: prefix,
	}
	s.notifier = newNotifier(s.List)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, common.NewTransportError("redis ping", err)
	}

	s.pubsub = client.Subscribe(ctx, s.changesChannel())
	if _, err := s.pubsub.Receive(ctx); err != nil {
		_ = s.pubsub.Close()
		return nil, common.NewTransportError("redis subscribe", err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	go s.listen(loopCtx)

	return s, nil
}

func (s *RedisStore) docsKey(collection string) string  { return s.prefix + collection + ":docs" }
func (s *RedisStore) orderKey(collection string) string { return s.prefix + collection + ":order" }
func (s *RedisStore) seqKey() string                     { return s.prefix + "seq" }
func (s *RedisStore) changesChannel() string             { return s.prefix + "changes" }

func (s *RedisStore) listen(ctx context.Context) {
	defer s.wg.Done()
	ch := s.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			s.notifier.notify(ctx, msg.Payload)
		}
	}
}

func (s *RedisStore) publish(ctx context.Context, collection string) {
	if err := s.client.Publish(ctx, s.changesChannel(), collection).Err(); err != nil {
		common.LogWarn("change notification failed",
			zap.String("collection", collection),
			zap.Error(err),
		)
	}
}

// List returns documents in insertion order
func (s *RedisStore) List(ctx context.Context, collection string) ([]Document, error) {
	ids, err := s.client.ZRange(ctx, s.orderKey(collection), 0, -1).Result()
	if err != nil {
		return nil, common.NewTransportError("redis list", err)
	}
	if len(ids) == 0 {
		return []Document{}, nil
	}

	values, err := s.client.HMGet(ctx, s.docsKey(collection), ids...).Result()
	if err != nil {
		return nil, common.NewTransportError("redis list", err)
	}

	docs := make([]Document, 0, len(ids))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		data, err := decodeFields(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: ids[i], Data: data})
	}
	return docs, nil
}

// Get returns one document
func (s *RedisStore) Get(ctx context.Context, collection, id string) (Document, error) {
	raw, err := s.client.HGet(ctx, s.docsKey(collection), id).Result()
	if errors.Is(err, redis.Nil) {
		return Document{}, common.ErrNotFound
	}
	if err != nil {
		return Document{}, common.NewTransportError("redis get", err)
	}
	data, err := decodeFields(raw)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id, Data: data}, nil
}

// Create stores data under a generated id
func (s *RedisStore) Create(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	raw, err := encodeFields(data)
	if err != nil {
		return "", err
	}
	id := common.GenerateUUID()

	seq, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return "", common.NewTransportError("redis create", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.docsKey(collection), id, raw)
		pipe.ZAdd(ctx, s.orderKey(collection), &redis.Z{Score: float64(seq), Member: id})
		return nil
	})
	if err != nil {
		return "", common.NewTransportError("redis create", err)
	}

	s.publish(ctx, collection)
	return id, nil
}

// Update merges data into an existing document
func (s *RedisStore) Update(ctx context.Context, collection, id string, data map[string]interface{}) error {
	if err := s.mergeTx(ctx, collection, id, data, false); err != nil {
		return err
	}
	s.publish(ctx, collection)
	return nil
}

// Merge upserts data under id
func (s *RedisStore) Merge(ctx context.Context, collection, id string, data map[string]interface{}) error {
	if err := s.mergeTx(ctx, collection, id, data, true); err != nil {
		return err
	}
	s.publish(ctx, collection)
	return nil
}

// mergeTx read-modify-writes a document under WATCH, retrying on conflict
func (s *RedisStore) mergeTx(ctx context.Context, collection, id string, data map[string]interface{}, upsert bool) error {
	patch, err := cloneFields(data)
	if err != nil {
		return err
	}
	docsKey := s.docsKey(collection)

	txf := func(tx *redis.Tx) error {
		current := map[string]interface{}{}
		raw, err := tx.HGet(ctx, docsKey, id).Result()
		exists := true
		switch {
		case errors.Is(err, redis.Nil):
			exists = false
		case err != nil:
			return err
		default:
			if current, err = decodeFields(raw); err != nil {
				return err
			}
		}
		if !exists && !upsert {
			return common.ErrNotFound
		}

		encoded, err := encodeFields(mergeFields(current, patch))
		if err != nil {
			return err
		}

		var seq int64
		if !exists {
			if seq, err = tx.Incr(ctx, s.seqKey()).Result(); err != nil {
				return err
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, docsKey, id, encoded)
			if !exists {
				pipe.ZAdd(ctx, s.orderKey(collection), &redis.Z{Score: float64(seq), Member: id})
			}
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err = s.client.Watch(ctx, txf, docsKey)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrNotFound):
		return err
	default:
		return common.NewTransportError("redis write", err)
	}
}

// Delete removes a document
func (s *RedisStore) Delete(ctx context.Context, collection, id string) error {
	var removed *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.HDel(ctx, s.docsKey(collection), id)
		pipe.ZRem(ctx, s.orderKey(collection), id)
		return nil
	})
	if err != nil {
		return common.NewTransportError("redis delete", err)
	}
	if removed.Val() == 0 {
		return common.ErrNotFound
	}

	s.publish(ctx, collection)
	return nil
}

// Subscribe starts a live query over collection
func (s *RedisStore) Subscribe(ctx context.Context, collection string, fn Listener) (Unsubscribe, error) {
	return s.notifier.subscribe(ctx, collection, fn)
}

// Ping checks the connection
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return common.NewTransportError("redis ping", err)
	}
	return nil
}

// Close stops the change feed; the client is owned by the caller
func (s *RedisStore) Close() error {
	s.cancel()
	err := s.pubsub.Close()
	s.wg.Wait()
	s.notifier.clear()
	return err
}

func encodeFields(data map[string]interface{}) (string, error) {
	fields, err := cloneFields(data)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(raw), nil
}

func decodeFields(raw string) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return out, nil
}
