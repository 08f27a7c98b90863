package posting

import (
	"github.com/tryanzu/overflow/board/collections"
	"github.com/tryanzu/overflow/board/content"
	"github.com/tryanzu/overflow/board/moderation"
	"github.com/tryanzu/overflow/board/users"
	"github.com/tryanzu/overflow/board/visibility"
	"github.com/tryanzu/overflow/core/config"
	"gopkg.in/mgo.v2/bson"
)

// DefaultLimit of question listings.
const DefaultLimit = 30

// Reader serves content through the visibility filter.
type Reader struct {
	posts       content.Store
	users       users.Store
	collections collections.Store
	moderators  config.Allowlist
}

func NewReader(posts content.Store, u users.Store, c collections.Store, moderators config.Allowlist) *Reader {
	return &Reader{posts: posts, users: u, collections: c, moderators: moderators}
}

// CollectionView is a collection with the saved posts the viewer may see.
type CollectionView struct {
	Collection collections.Collection `json:"collection"`
	Posts      content.Posts          `json:"posts"`
}

func (r *Reader) viewer(username string) visibility.Viewer {
	return visibility.Viewer{Username: username, Moderator: r.moderators.Has(username)}
}

func (r *Reader) filter(username string, list content.Posts) (visibility.Filter, error) {
	found, err := r.users.FindNames(list.Authors())
	if err != nil {
		return visibility.Filter{}, &moderation.PersistenceError{Op: "find authors", Err: err}
	}
	return visibility.New(r.viewer(username), found.Shadowed()), nil
}

// Question tree as seen by username. Hidden questions are not found.
func (r *Reader) Question(username, id string) (content.Tree, error) {
	if !bson.IsObjectIdHex(id) {
		return content.Tree{}, &moderation.ValidationError{Field: "id", Message: "is not a valid id"}
	}
	tree, err := r.posts.FindTree(bson.ObjectIdHex(id))
	if err == content.ErrNotFound {
		return content.Tree{}, &moderation.NotFoundError{Kind: "question", ID: id}
	} else if err != nil {
		return content.Tree{}, &moderation.PersistenceError{Op: "find question", Err: err}
	}
	f, err := r.filter(username, tree.Flatten())
	if err != nil {
		return content.Tree{}, err
	}
	visible, ok := f.Tree(tree)
	if !ok {
		return content.Tree{}, &moderation.NotFoundError{Kind: "question", ID: id}
	}
	return visible, nil
}

// Questions by order, filtered for username.
func (r *Reader) Questions(username, order string, offset, limit int) (content.Posts, error) {
	o, ok := content.ParseOrder(order)
	if !ok {
		return nil, &moderation.ValidationError{Field: "order", Message: "must be one of newest, unanswered, active"}
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	list, err := r.posts.FindQuestions(o, offset, limit)
	if err != nil {
		return nil, &moderation.PersistenceError{Op: "list questions", Err: err}
	}
	f, err := r.filter(username, list)
	if err != nil {
		return nil, err
	}
	return f.Posts(list), nil
}

// Collection as seen by username. Private collections of someone else look
// like missing ones.
func (r *Reader) Collection(username, id string) (CollectionView, error) {
	if !bson.IsObjectIdHex(id) {
		return CollectionView{}, &moderation.ValidationError{Field: "id", Message: "is not a valid id"}
	}
	c, err := r.collections.FindId(bson.ObjectIdHex(id))
	if err == collections.ErrNotFound || (err == nil && !c.ReadableBy(username, r.moderators.Has(username))) {
		return CollectionView{}, &moderation.NotFoundError{Kind: "collection", ID: id}
	} else if err != nil {
		return CollectionView{}, &moderation.PersistenceError{Op: "find collection", Err: err}
	}
	saved := content.Posts{}
	for _, s := range c.Saved {
		p, err := r.posts.FindId(s.Kind, s.PostID)
		if err == content.ErrNotFound {
			continue
		} else if err != nil {
			return CollectionView{}, &moderation.PersistenceError{Op: "find saved post", Err: err}
		}
		saved = append(saved, p)
	}
	f, err := r.filter(username, saved)
	if err != nil {
		return CollectionView{}, err
	}
	view := CollectionView{Collection: c, Posts: content.Posts{}}
	for _, p := range saved {
		if f.AllowsChild(p) {
			view.Posts = append(view.Posts, p)
		}
	}
	return view, nil
}
