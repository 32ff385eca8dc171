package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/sunrise-apartments/portal/internal/core/ports"
)

const slotCollection = "session_slots"

// SlotStore keeps one document per session slot, keyed by slot name.
type SlotStore struct {
	coll *mongo.Collection
}

var _ ports.SlotStorage = (*SlotStore)(nil)

// NewSlotStore writes with majority concern, so a restarted portal reads
// back the session it last saved even after a failover.
func NewSlotStore(db *mongo.Database) *SlotStore {
	opts := options.Collection().SetWriteConcern(writeconcern.Majority())
	return &SlotStore{coll: db.Collection(slotCollection, opts)}
}

type slotDoc struct {
	Key       string `bson:"_id"`
	Value     string `bson:"value"`
	UpdatedAt int64  `bson:"updated_at"`
}

func (s *SlotStore) Get(ctx context.Context, key string) (string, error) {
	var doc slotDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ports.ErrSlotNotFound
		}
		return "", fmt.Errorf("find slot %s: %w", key, err)
	}
	return doc.Value, nil
}

func (s *SlotStore) Set(ctx context.Context, key, value string) error {
	update := bson.M{"$set": bson.M{"value": value, "updated_at": time.Now().Unix()}}
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert slot %s: %w", key, err)
	}
	return nil
}

func (s *SlotStore) Delete(ctx context.Context, key string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("delete slot %s: %w", key, err)
	}
	return nil
}

// Ping reports whether the server answers.
func (s *SlotStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}
