/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "killergame"

// redisStore keeps each document as a single string value, so a save is one
// SET and replaces the whole document.
type redisStore struct {
	client *redis.Client
	addr   string
}

func newRedisStore(ctx context.Context, url string) (*redisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()

		return nil, err
	}

	return &redisStore{client: client, addr: opts.Addr}, nil
}

func newRedisStoreWithClient(client *redis.Client) *redisStore {
	return &redisStore{client: client, addr: client.Options().Addr}
}

func documentKey(name string) string {
	return redisKeyPrefix + ":doc:" + name
}

func (s *redisStore) Load(ctx context.Context, name string) ([]byte, error) {
	data, err := s.client.Get(ctx, documentKey(name)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, ErrDocumentNotFound
	case err != nil:
		return nil, err
	}

	return data, nil
}

func (s *redisStore) Save(ctx context.Context, name string, data []byte) error {
	return s.client.Set(ctx, documentKey(name), data, 0).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}

func (s *redisStore) String() string {
	return "redis:" + s.addr
}
