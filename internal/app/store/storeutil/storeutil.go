// internal/app/store/storeutil/storeutil.go
package storeutil

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Page size bounds for operator listings.
const (
	DefaultPageSize int64 = 20
	MaxPageSize     int64 = 200
)

// NewestFirst returns find options for a 1-based page sorted by created_at
// descending, with _id breaking ties. Out-of-range sizes fall back to
// DefaultPageSize or are capped at MaxPageSize.
func NewestFirst(limit, page int64) *options.FindOptions {
	switch {
	case limit <= 0:
		limit = DefaultPageSize
	case limit > MaxPageSize:
		limit = MaxPageSize
	}
	if page <= 0 {
		page = 1
	}
	return options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit).
		SetSkip((page - 1) * limit)
}
