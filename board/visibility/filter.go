// Package visibility decides which stored posts a viewer may see. Every
// function here is pure; the same rules run on initial fetches and on live
// updates re-delivered to sockets.
package visibility

import (
	"github.com/tryanzu/overflow/board/content"
)

// Viewer requesting content. Anonymous viewers have an empty Username.
type Viewer struct {
	Username  string
	Moderator bool
}

// Sees applies the removal and shadow-ban rules to a single piece of content.
func (v Viewer) Sees(author string, authorShadowed, removed bool) bool {
	if removed && !v.Moderator {
		return false
	}
	if authorShadowed && !v.Moderator && author != v.Username {
		return false
	}
	return true
}

// Filter binds a viewer to the set of shadow-banned authors involved.
type Filter struct {
	Viewer   Viewer
	Shadowed map[string]bool
}

func New(v Viewer, shadowed map[string]bool) Filter {
	if shadowed == nil {
		shadowed = map[string]bool{}
	}
	return Filter{Viewer: v, Shadowed: shadowed}
}

// Allows a top level post (questions, collection entries).
func (f Filter) Allows(p content.Post) bool {
	return f.Viewer.Sees(p.Author, f.Shadowed[p.Author], p.Removed)
}

// AllowsChild additionally hides answers and comments the viewer flagged.
func (f Filter) AllowsChild(p content.Post) bool {
	if f.Viewer.Username != "" && p.FlaggedBy(f.Viewer.Username) {
		return false
	}
	return f.Allows(p)
}

// Tree returns the visible part of a question tree. ok is false when the
// question itself is hidden, in which case nothing is visible.
func (f Filter) Tree(t content.Tree) (out content.Tree, ok bool) {
	if !f.Allows(t.Question) {
		return content.Tree{}, false
	}
	out.Question = t.Question
	out.Comments = f.children(t.Comments)
	out.Answers = make([]content.AnswerNode, 0, len(t.Answers))
	for _, node := range t.Answers {
		if !f.AllowsChild(node.Answer) {
			continue
		}
		out.Answers = append(out.Answers, content.AnswerNode{
			Answer:   node.Answer,
			Comments: f.children(node.Comments),
		})
	}
	return out, true
}

// Posts keeps the visible top level posts, preserving order.
func (f Filter) Posts(list content.Posts) content.Posts {
	out := make(content.Posts, 0, len(list))
	for _, p := range list {
		if f.Allows(p) {
			out = append(out, p)
		}
	}
	return out
}

func (f Filter) children(list content.Posts) content.Posts {
	out := make(content.Posts, 0, len(list))
	for _, p := range list {
		if f.AllowsChild(p) {
			out = append(out, p)
		}
	}
	return out
}
