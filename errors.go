package bookshelf

import (
	"errors"

	"github.com/helixml/bookshelf/application/service"
)

var (
	// ErrNoDatabase is returned by New when no database option was given.
	ErrNoDatabase = errors.New("bookshelf: no database configured")

	// ErrClientClosed is returned when using a closed Client.
	ErrClientClosed = service.ErrClientClosed
)
