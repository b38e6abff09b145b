package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BlocklistService owns the set of numbers barred from lookup. The check
// runs before any entitlement mutation, so a blocked search never consumes
// trial, bonus, or balance.
type BlocklistService struct {
	blocked *mongo.Collection
}

func NewBlocklistService(blocked *mongo.Collection) *BlocklistService {
	return &BlocklistService{blocked: blocked}
}

// IsBlocked reports whether a number is barred from lookups.
func (s *BlocklistService) IsBlocked(ctx context.Context, number string) (bool, error) {
	count, err := s.blocked.CountDocuments(ctx, bson.M{"_id": number})
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return count > 0, nil
}

// Block adds a number to the blocklist. Idempotent: blocking an already
// blocked number succeeds and refreshes the metadata.
func (s *BlocklistService) Block(ctx context.Context, number string, addedBy int64) error {
	opts := options.Update().SetUpsert(true)
	_, err := s.blocked.UpdateOne(ctx,
		bson.M{"_id": number},
		bson.M{"$set": bson.M{"added_by": addedBy, "added_at": time.Now().UTC()}},
		opts,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Unblock removes a number; returns false if it was not blocked.
func (s *BlocklistService) Unblock(ctx context.Context, number string) (bool, error) {
	res, err := s.blocked.DeleteOne(ctx, bson.M{"_id": number})
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return res.DeletedCount > 0, nil
}
