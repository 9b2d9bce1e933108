package persistence

import "time"

// BookModel represents a catalog book in the database.
type BookModel struct {
	ID            string        `gorm:"column:id;primaryKey;size:36"`
	Title         string        `gorm:"column:title;index;size:255;not null"`
	Author        string        `gorm:"column:author;index;size:255;not null"`
	Description   string        `gorm:"column:description;type:text"`
	CoverImageURL string        `gorm:"column:cover_image_url;size:1024"`
	Reviews       []ReviewModel `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time     `gorm:"column:created_at"`
	UpdatedAt     time.Time     `gorm:"column:updated_at"`
}

// TableName returns the table name.
func (BookModel) TableName() string {
	return "books"
}

// ReviewModel represents an enriched review in the database.
type ReviewModel struct {
	ID             string     `gorm:"column:id;primaryKey;size:36"`
	BookID         string     `gorm:"column:book_id;index;size:36;not null"`
	Book           *BookModel `gorm:"foreignKey:BookID"`
	ReviewerName   string     `gorm:"column:reviewer_name;size:100;not null"`
	Text           string     `gorm:"column:text;type:text;not null"`
	Rating         int        `gorm:"column:rating;not null"`
	Summary        string     `gorm:"column:summary;type:text"`
	SentimentScore float64    `gorm:"column:sentiment_score"`
	Tags           []string   `gorm:"column:tags;serializer:json;type:text"`
	CreatedAt      time.Time  `gorm:"column:created_at;index"`
}

// TableName returns the table name.
func (ReviewModel) TableName() string {
	return "reviews"
}
