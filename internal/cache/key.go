package cache

import (
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"sort"
	"strings"

	"github.com/yukikurage/project-management-api/internal/repository"
)

const allTag = "|all|"

// OrganizationTag marks a key as derived from the organization's data.
func OrganizationTag(id uint64) string {
	return fmt.Sprintf("|o%d|", id)
}

// ProjectTag marks a key as derived from the project's data.
func ProjectTag(id uint64) string {
	return fmt.Sprintf("|p%d|", id)
}

// TaskTag marks a key as derived from the task's data.
func TaskTag(id uint64) string {
	return fmt.Sprintf("|t%d|", id)
}

// ScopeTags tags a key with every organization in the scope, or with the
// superuser tag. Two principals share a key only if their scopes are equal.
func ScopeTags(s repository.Scope) []string {
	if s.All {
		return []string{allTag}
	}
	ids := slices.Clone(s.OrganizationIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	tags := make([]string, len(ids))
	for i, id := range ids {
		tags[i] = OrganizationTag(id)
	}
	return tags
}

// Key identifies one cached read: the operation, its positional and keyword
// arguments, and the tags invalidation matches on.
type Key struct {
	Tags   []string
	Op     string
	Args   []any
	Kwargs map[string]any
}

// NewKey creates a Key for op tagged with tags.
func NewKey(op string, tags ...string) Key {
	return Key{Op: op, Tags: tags}
}

// With appends positional arguments.
func (k Key) With(args ...any) Key {
	k.Args = append(slices.Clone(k.Args), args...)
	return k
}

// Named sets a keyword argument.
func (k Key) Named(name string, value any) Key {
	kwargs := make(map[string]any, len(k.Kwargs)+1)
	for n, v := range k.Kwargs {
		kwargs[n] = v
	}
	kwargs[name] = value
	k.Kwargs = kwargs
	return k
}

// String renders the key as <tags>:<op>:<arg>...:<name>=<value>... with
// keyword arguments sorted by name. Every component is JSON encoded and
// then query-escaped, so ':', '|', '=' and glob characters never appear
// inside one.
func (k Key) String() string {
	parts := make([]string, 0, 2+len(k.Args)+len(k.Kwargs))
	parts = append(parts, strings.Join(k.Tags, ""), encodeComponent(k.Op))

	for _, arg := range k.Args {
		parts = append(parts, encodeComponent(arg))
	}

	names := make([]string, 0, len(k.Kwargs))
	for name := range k.Kwargs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		parts = append(parts, encodeComponent(name)+"="+encodeComponent(k.Kwargs[name]))
	}

	return strings.Join(parts, ":")
}

func encodeComponent(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		raw = []byte(fmt.Sprintf("%T:%v", v, v))
	}
	return url.QueryEscape(string(raw))
}

// tagPattern matches every key in a namespace that carries tag.
func tagPattern(tag string) string {
	return "*" + tag + "*"
}
