package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const keysCollection = "api_keys"

type cacheEntry struct {
	active    bool
	expiresAt time.Time
}

// MongoKeyStore keeps API keys in MongoDB. Lookups, including misses, are cached for
// cacheTTL; Create and Revoke update the cache immediately.
type MongoKeyStore struct {
	coll     *mongo.Collection
	cacheTTL time.Duration
	mu       sync.RWMutex
	cache    map[string]cacheEntry
	now      func() time.Time
}

type keyDoc struct {
	Key       string    `bson:"key"`
	Active    bool      `bson:"active"`
	Owner     string    `bson:"owner,omitempty"`
	Email     string    `bson:"email,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

// NewMongoKeyStore sets up the collection and the unique index on key.
func NewMongoKeyStore(ctx context.Context, client *mongo.Client, dbName string, ttl time.Duration) (*MongoKeyStore, error) {
	coll := client.Database(dbName).Collection(keysCollection)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("create key index: %w", err)
	}
	return &MongoKeyStore{
		coll:     coll,
		cacheTTL: ttl,
		cache:    make(map[string]cacheEntry),
		now:      time.Now,
	}, nil
}

func (s *MongoKeyStore) cached(key string) (bool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ce, ok := s.cache[key]
	if !ok || !s.now().Before(ce.expiresAt) {
		return false, false
	}
	return ce.active, true
}

func (s *MongoKeyStore) remember(key string, active bool) {
	s.mu.Lock()
	s.cache[key] = cacheEntry{active: active, expiresAt: s.now().Add(s.cacheTTL)}
	s.mu.Unlock()
}

func (s *MongoKeyStore) Validate(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrMissingKey
	}
	if active, ok := s.cached(key); ok {
		return active, nil
	}
	var doc keyDoc
	err := s.coll.FindOne(ctx, bson.D{{Key: "key", Value: key}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			s.remember(key, false)
			return false, nil
		}
		return false, fmt.Errorf("find key: %w", err)
	}
	s.remember(key, doc.Active)
	return doc.Active, nil
}

func (s *MongoKeyStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}

// Create upserts a key. created_at is only written on insert.
func (s *MongoKeyStore) Create(ctx context.Context, k Key) error {
	if k.Key == "" {
		return ErrMissingKey
	}
	_, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "key", Value: k.Key}},
		bson.D{
			{Key: "$set", Value: bson.D{
				{Key: "active", Value: k.Active},
				{Key: "owner", Value: k.Owner},
				{Key: "email", Value: k.Email},
			}},
			{Key: "$setOnInsert", Value: bson.D{{Key: "created_at", Value: s.now().UTC()}}},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert key: %w", err)
	}
	s.remember(k.Key, k.Active)
	return nil
}

func (s *MongoKeyStore) Revoke(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrMissingKey
	}
	res, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "key", Value: key}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "active", Value: false}}}},
	)
	if err != nil {
		return false, fmt.Errorf("revoke key: %w", err)
	}
	s.remember(key, false)
	return res.MatchedCount > 0, nil
}
