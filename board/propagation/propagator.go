// Package propagation cascades a post removal into every place that may
// still reference it. The cascade is a saga: each step is idempotent and
// every step runs even when an earlier one failed.
package propagation

import (
	"github.com/op/go-logging"
	"github.com/tryanzu/overflow/board/collections"
	"github.com/tryanzu/overflow/board/content"
	"gopkg.in/mgo.v2/bson"
)

var log = logging.MustGetLogger("propagation")

// Step names, in execution order.
const (
	StepCollections = "collections"
	StepActivity    = "activity"
	StepParent      = "parent"
)

type collectionStore interface {
	RemovePost(postID bson.ObjectId) ([]collections.Collection, error)
}

type historyStore interface {
	PullActivity(postID bson.ObjectId) (int, error)
}

type postStore interface {
	DetachChild(parent content.Ref, child content.Ref) error
}

// Result of a run. Fields of failed steps keep their zero value.
type Result struct {
	Collections []collections.Collection
	Histories   int
	Detached    bool
}

type Propagator struct {
	collections collectionStore
	users       historyStore
	posts       postStore
}

func New(c collectionStore, u historyStore, p postStore) *Propagator {
	return &Propagator{collections: c, users: u, posts: p}
}

// Run executes every step for a removed post. A non nil error is always an
// *Error naming the failed steps; Result still holds what the others did.
func (p *Propagator) Run(post content.Post) (Result, error) {
	var (
		res  Result
		fail []StepError
	)
	steps := []struct {
		name string
		fn   func() error
	}{
		{StepCollections, func() (err error) {
			res.Collections, err = p.collections.RemovePost(post.Id)
			return
		}},
		{StepActivity, func() (err error) {
			res.Histories, err = p.users.PullActivity(post.Id)
			return
		}},
		{StepParent, func() error {
			if post.Kind == content.QUESTION || post.ParentID.Valid() == false {
				return nil
			}
			parent := content.Ref{ID: post.ParentID, Kind: post.ParentKind}
			if err := p.posts.DetachChild(parent, post.Ref()); err != nil {
				return err
			}
			res.Detached = true
			return nil
		}},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			log.Errorf("propagation step %s failed for %s %s: %v", step.name, post.Kind, post.Id.Hex(), err)
			fail = append(fail, StepError{Step: step.name, Err: err})
		}
	}
	if len(fail) > 0 {
		return res, &Error{PostID: post.Id, Failures: fail}
	}
	log.Infof("propagated removal of %s %s: %d collections, %d histories", post.Kind, post.Id.Hex(), len(res.Collections), res.Histories)
	return res, nil
}
