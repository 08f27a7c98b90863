package controller

import (
	"github.com/tryanzu/overflow/board/moderation"
	"github.com/tryanzu/overflow/board/posting"
)

// API holds the handlers of the v1 routes.
type API struct {
	Engine    *moderation.Engine `inject:""`
	Publisher *posting.Publisher `inject:""`
	Reader    *posting.Reader    `inject:""`
}
