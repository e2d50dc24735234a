package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Pagination limits
const (
	DefaultPageSize int64 = 20
	MaxPageSize     int64 = 200
	MaxPage         int64 = 1_000_000
)

// GenerateIDString returns a fresh ObjectID in hex form
func GenerateIDString() string {
	return primitive.NewObjectID().Hex()
}

// ParseID parses a hex string into an ObjectID
func ParseID(id string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(id)
}

// Now returns the current time in UTC truncated to the millisecond BSON stores.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// BuildUpdateWithTimestamp wraps set in $set and stamps updatedAt
func BuildUpdateWithTimestamp(set bson.M) bson.M {
	set["updatedAt"] = Now()
	return bson.M{"$set": set}
}

// SortDescending creates a descending sort option
func SortDescending(field string) bson.D {
	return bson.D{{Key: field, Value: -1}}
}

// Pagination represents 1-based page options
type Pagination struct {
	Page     int64
	PageSize int64
}

// NewPagination clamps page to [1, MaxPage] and pageSize to [1, MaxPageSize].
func NewPagination(page, pageSize int64) Pagination {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}
}

// Skip returns the number of documents to skip
func (p Pagination) Skip() int64 {
	return (p.Page - 1) * p.PageSize
}

// Limit returns the maximum number of documents to return
func (p Pagination) Limit() int64 {
	return p.PageSize
}
