package content

import (
	"time"

	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

type deps interface {
	Mgo() *mgo.Database
}

// Mongo backed store.
type Mongo struct {
	d deps
}

func NewMongo(d deps) *Mongo {
	return &Mongo{d: d}
}

func (m *Mongo) c(kind Kind) *mgo.Collection {
	return m.d.Mgo().C(kind.Collection())
}

// EnsureIndexes for queue and listing queries.
func (m *Mongo) EnsureIndexes() error {
	for _, k := range []Kind{QUESTION, ANSWER, COMMENT} {
		err := m.c(k).EnsureIndex(mgo.Index{
			Key:        []string{"-created_at"},
			Background: true,
		})
		if err != nil {
			return err
		}
	}
	return m.c(QUESTION).EnsureIndex(mgo.Index{
		Key:        []string{"-active_at"},
		Background: true,
	})
}

func (m *Mongo) Insert(p *Post) error {
	if p.Id.Valid() == false {
		p.Id = bson.NewObjectId()
	}
	if p.Flags == nil {
		p.Flags = []FlagRef{}
	}
	if p.Active.IsZero() {
		p.Active = p.Created
	}
	return m.c(p.Kind).Insert(p)
}

func (m *Mongo) FindId(kind Kind, id bson.ObjectId) (p Post, err error) {
	err = m.c(kind).FindId(id).One(&p)
	if err == mgo.ErrNotFound {
		err = ErrNotFound
	}
	return
}

func (m *Mongo) FindTree(questionID bson.ObjectId) (t Tree, err error) {
	t.Question, err = m.FindId(QUESTION, questionID)
	if err != nil {
		return
	}
	var answers, comments Posts
	err = m.c(ANSWER).Find(bson.M{"question_id": questionID}).Sort("created_at", "_id").All(&answers)
	if err != nil {
		return
	}
	err = m.c(COMMENT).Find(bson.M{"question_id": questionID}).Sort("created_at", "_id").All(&comments)
	if err != nil {
		return
	}
	return assemble(t.Question, answers, comments), nil
}

func (m *Mongo) FindQuestions(order Order, offset, limit int) (list Posts, err error) {
	q := bson.M{}
	sort := []string{"-created_at", "-_id"}
	switch order {
	case UNANSWERED:
		q["answers.0"] = bson.M{"$exists": false}
	case ACTIVE:
		sort = []string{"-active_at", "-_id"}
	}
	query := m.c(QUESTION).Find(q).Sort(sort...).Skip(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}
	err = query.All(&list)
	return
}

func (m *Mongo) AddChild(parent Ref, child Ref, at time.Time) error {
	field := "comments"
	if child.Kind == ANSWER {
		field = "answers"
	}
	err := m.c(parent.Kind).UpdateId(parent.ID, bson.M{
		"$addToSet": bson.M{field: child.ID},
		"$set":      bson.M{"active_at": at},
	})
	if err == mgo.ErrNotFound {
		return ErrNotFound
	}
	return err
}

func (m *Mongo) DetachChild(parent Ref, child Ref) error {
	err := m.c(parent.Kind).UpdateId(parent.ID, bson.M{
		"$pull": bson.M{"answers": child.ID, "comments": child.ID},
	})
	if err == mgo.ErrNotFound {
		// Parent already gone, nothing left to detach from.
		return nil
	}
	return err
}

func (m *Mongo) PushFlag(ref Ref, f FlagRef) error {
	err := m.c(ref.Kind).UpdateId(ref.ID, bson.M{"$push": bson.M{"flags": f}})
	if err == mgo.ErrNotFound {
		return ErrNotFound
	}
	return err
}

func (m *Mongo) MarkRemoved(ref Ref, by string, at time.Time) error {
	err := m.c(ref.Kind).Update(bson.M{
		"_id":        ref.ID,
		"is_removed": bson.M{"$ne": true},
	}, bson.M{"$set": bson.M{
		"is_removed": true,
		"removed_by": by,
		"removed_at": at,
	}})
	if err == mgo.ErrNotFound {
		return ErrNotFound
	}
	return err
}

func assemble(q Post, answers, comments Posts) Tree {
	t := Tree{Question: q, Comments: Posts{}, Answers: []AnswerNode{}}
	byAnswer := map[bson.ObjectId]Posts{}
	for _, c := range comments {
		if c.ParentKind == QUESTION {
			t.Comments = append(t.Comments, c)
			continue
		}
		byAnswer[c.ParentID] = append(byAnswer[c.ParentID], c)
	}
	for _, a := range answers {
		node := AnswerNode{Answer: a, Comments: byAnswer[a.Id]}
		if node.Comments == nil {
			node.Comments = Posts{}
		}
		t.Answers = append(t.Answers, node)
	}
	return t
}
