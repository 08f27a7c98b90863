package config

import (
	"sort"
)

// Allowlist is the closed set of moderator usernames. It is built once at
// start and has no mutation methods.
type Allowlist struct {
	names map[string]struct{}
}

func NewAllowlist(names ...string) Allowlist {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		m[n] = struct{}{}
	}
	return Allowlist{names: m}
}

// Has reports whether username is a moderator.
func (a Allowlist) Has(username string) bool {
	if username == "" {
		return false
	}
	_, ok := a.names[username]
	return ok
}

func (a Allowlist) Len() int {
	return len(a.names)
}

// Names in lexical order.
func (a Allowlist) Names() []string {
	list := make([]string, 0, len(a.names))
	for n := range a.names {
		list = append(list, n)
	}
	sort.Strings(list)
	return list
}
