package repository

// WithBookID filters by the "book_id" column.
func WithBookID(id string) Option {
	return WithCondition("book_id", id)
}

// WithTitle filters by the exact "title" column.
func WithTitle(title string) Option {
	return WithCondition("title", title)
}

// WithNewestFirst orders by creation time, most recent first.
func WithNewestFirst() Option {
	return WithOrderDesc("created_at")
}
