package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/helixml/bookshelf/domain/book"
	"github.com/helixml/bookshelf/internal/database"
)

// BookStore implements book.BookStore using GORM.
type BookStore struct {
	database.Repository[book.Book, BookModel]
}

// NewBookStore creates a new BookStore.
func NewBookStore(db database.Database) BookStore {
	return BookStore{
		Repository: database.NewRepository[book.Book, BookModel](db, BookMapper{}, "book"),
	}
}

// Save creates or updates a book. Its reviews are not touched.
func (s BookStore) Save(ctx context.Context, b book.Book) (book.Book, error) {
	model := s.Mapper().ToModel(b)
	if err := s.DB(ctx).Omit(clause.Associations).Save(&model).Error; err != nil {
		return book.Book{}, fmt.Errorf("save book: %w", err)
	}
	return s.Mapper().ToDomain(model), nil
}

// SaveAll inserts books in one batch.
func (s BookStore) SaveAll(ctx context.Context, books []book.Book) ([]book.Book, error) {
	if len(books) == 0 {
		return []book.Book{}, nil
	}
	models := make([]BookModel, len(books))
	for i, b := range books {
		models[i] = s.Mapper().ToModel(b)
	}
	if err := s.DB(ctx).Omit(clause.Associations).Create(&models).Error; err != nil {
		return nil, fmt.Errorf("save books: %w", err)
	}
	saved := make([]book.Book, len(models))
	for i, m := range models {
		saved[i] = s.Mapper().ToDomain(m)
	}
	return saved, nil
}

// FindWithReviews returns one book with its reviews, newest first.
func (s BookStore) FindWithReviews(ctx context.Context, id string) (book.Book, error) {
	var model BookModel
	err := s.DB(ctx).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return book.Book{}, fmt.Errorf("%w: book %s", database.ErrNotFound, id)
		}
		return book.Book{}, fmt.Errorf("find book with reviews: %w", err)
	}
	if model.Reviews == nil {
		model.Reviews = []ReviewModel{}
	}
	return s.Mapper().ToDomain(model), nil
}

var _ book.BookStore = BookStore{}
