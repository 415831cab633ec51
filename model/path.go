package model

import (
	"sort"
	"strings"
)

// Path addresses a value of the document. The first element is the id of a
// node, the second one is the name of a property of this node, and the
// following elements (if any) are keys in nested maps of this property.
type Path []string

// NodeID returns the id of the node addressed by the path.
func (p Path) NodeID() string {
	if len(p) == 0 {
		return ""
	}
	return p[0]
}

// Property returns the name of the property addressed by the path.
func (p Path) Property() string {
	if len(p) < 2 {
		return ""
	}
	return p[1]
}

// Equal returns true if both paths have the same elements.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix returns true if the path starts with the elements of prefix.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	return p[:len(prefix)].Equal(prefix)
}

// Clone returns a copy of the path that doesn't share its backing array.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	cpy := make(Path, len(p))
	copy(cpy, p)
	return cpy
}

func (p Path) String() string {
	return strings.Join(p, ".")
}

// key is a flat representation of the path, used to bucket values by path in
// a single level of a PathAdapter.
func (p Path) key() string {
	return strings.Join(p, "\x1f")
}

// PathFrom converts a value coming from node data (a Path, a []string or a
// []interface{} of strings, as decoded from JSON) to a Path.
func PathFrom(value interface{}) (Path, bool) {
	switch v := value.(type) {
	case Path:
		return v, true
	case []string:
		return Path(v), true
	case []interface{}:
		p := make(Path, len(v))
		for i, elem := range v {
			s, ok := elem.(string)
			if !ok {
				return nil, false
			}
			p[i] = s
		}
		return p, true
	}
	return nil, false
}

// PathAdapter is a nested key-path mapping. Values are stored in maps of
// maps, one level per element of the path. Sibling keys are not ordered.
type PathAdapter struct {
	root map[string]interface{}
}

// NewPathAdapter returns an empty PathAdapter.
func NewPathAdapter() *PathAdapter {
	return &PathAdapter{root: map[string]interface{}{}}
}

// Get returns the value at the given path. For a partial path, the nested
// map of this level is returned. It returns nil if nothing is stored there.
func (a *PathAdapter) Get(path Path) interface{} {
	if len(path) == 0 {
		return a.root
	}
	cur := a.root
	for i, key := range path {
		v, ok := cur[key]
		if !ok {
			return nil
		}
		if i == len(path)-1 {
			return v
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = m
	}
	return nil
}

// Set stores a value at the given path, creating the intermediate levels
// when needed.
func (a *PathAdapter) Set(path Path, value interface{}) {
	if len(path) == 0 {
		return
	}
	cur := a.root
	for _, key := range path[:len(path)-1] {
		m, ok := cur[key].(map[string]interface{})
		if !ok {
			m = map[string]interface{}{}
			cur[key] = m
		}
		cur = m
	}
	cur[path[len(path)-1]] = value
}

// Delete removes the value at the given path. Levels left empty by the
// removal are removed too.
func (a *PathAdapter) Delete(path Path) {
	if len(path) == 0 {
		return
	}
	levels := make([]map[string]interface{}, 0, len(path))
	cur := a.root
	for _, key := range path[:len(path)-1] {
		m, ok := cur[key].(map[string]interface{})
		if !ok {
			return
		}
		levels = append(levels, cur)
		cur = m
	}
	delete(cur, path[len(path)-1])
	for i := len(levels) - 1; i >= 0 && len(cur) == 0; i-- {
		delete(levels[i], path[i])
		cur = levels[i]
	}
}

// Keys returns the sorted keys of the level at the given path.
func (a *PathAdapter) Keys(path Path) []string {
	m, ok := a.Get(path).(map[string]interface{})
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clear removes everything.
func (a *PathAdapter) Clear() {
	a.root = map[string]interface{}{}
}
