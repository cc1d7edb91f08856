// internal/matching/set.go
package matching

import (
	"sort"
	"strings"
)

// Set is a hash set of normalized facet values.
type Set map[string]struct{}

// Normalize trims and lower-cases a facet value so that "Mission " and "mission" compare equal.
func Normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func NewSet(items ...string) Set {
	s := make(Set, len(items))
	for _, item := range items {
		s.Add(item)
	}
	return s
}

func (s Set) Add(item string) {
	if n := Normalize(item); n != "" {
		s[n] = struct{}{}
	}
}

func (s Set) Has(item string) bool {
	_, ok := s[Normalize(item)]
	return ok
}

func (s Set) Len() int {
	return len(s)
}

func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for k := range s {
		out[k] = struct{}{}
	}
	for k := range other {
		out[k] = struct{}{}
	}
	return out
}

func (s Set) Intersect(other Set) Set {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(Set)
	for k := range small {
		if _, ok := large[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

// Difference returns the members of s that are not in other.
func (s Set) Difference(other Set) Set {
	out := make(Set)
	for k := range s {
		if _, ok := other[k]; !ok {
			out[k] = struct{}{}
		}
	}
	return out
}

// Sorted returns the members in ascending order. The result is never nil.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
