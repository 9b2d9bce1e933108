package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/helixml/bookshelf/domain/book"
	"github.com/helixml/bookshelf/internal/database"
)

// ReviewStore implements book.ReviewStore using GORM.
type ReviewStore struct {
	database.Repository[book.Review, ReviewModel]
}

// NewReviewStore creates a new ReviewStore.
func NewReviewStore(db database.Database) ReviewStore {
	return ReviewStore{
		Repository: database.NewRepository[book.Review, ReviewModel](db, ReviewMapper{}, "review"),
	}
}

// Save inserts a review.
func (s ReviewStore) Save(ctx context.Context, r book.Review) (book.Review, error) {
	model := s.Mapper().ToModel(r)
	if err := s.DB(ctx).Omit(clause.Associations).Create(&model).Error; err != nil {
		return book.Review{}, fmt.Errorf("save review: %w", err)
	}
	return s.Mapper().ToDomain(model), nil
}

var _ book.ReviewStore = ReviewStore{}
