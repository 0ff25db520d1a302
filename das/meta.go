package das

import (
	"fmt"
	"sort"
	"strings"
)

// PathSep joins the keys of nested meta mappings into leaf paths.
const PathSep = "/"

// Leaf is one terminal node of a flattened meta tree: the "/"-joined
// key chain from the tree root, and the value stored there.
type Leaf struct {
	Path  string
	Value any
}

// Flatten walks t depth-first and returns one Leaf per terminal value,
// ordered by path. Supported leaf values are strings, integer and float
// scalars, and 1-D numeric slices; nested mappings recurse. Anything
// else fails with *UnsupportedValueTypeError.
func Flatten(t Tree) ([]Leaf, error) {
	var leaves []Leaf
	if err := flatten("", map[string]any(t), &leaves); err != nil {
		return nil, err
	}
	return leaves, nil
}

func flatten(prefix string, t map[string]any, leaves *[]Leaf) error {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		path := k
		if prefix != "" {
			path = prefix + PathSep + k
		}
		if err := checkKey(k, path); err != nil {
			return err
		}
		switch v := t[k].(type) {
		case Tree:
			if err := flatten(path, map[string]any(v), leaves); err != nil {
				return err
			}
		case map[string]any:
			if err := flatten(path, v, leaves); err != nil {
				return err
			}
		default:
			if !supportedLeaf(v) {
				return &UnsupportedValueTypeError{Path: path, Value: v}
			}
			*leaves = append(*leaves, Leaf{Path: path, Value: v})
		}
	}
	return nil
}

// Unflatten reconstructs the nested mapping from its leaves, creating
// intermediate mappings as needed. It is the exact inverse of Flatten.
func Unflatten(leaves []Leaf) (Tree, error) {
	root := Tree{}
	for _, lf := range leaves {
		parts := strings.Split(lf.Path, PathSep)
		node := root
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p]
			if !ok {
				next := Tree{}
				node[p] = next
				node = next
				continue
			}
			next, ok := child.(Tree)
			if !ok {
				return nil, fmt.Errorf("das: meta path %q crosses leaf %q", lf.Path, p)
			}
			node = next
		}
		last := parts[len(parts)-1]
		if prev, ok := node[last]; ok {
			if _, isTree := prev.(Tree); isTree {
				return nil, fmt.Errorf("das: meta path %q is both a leaf and a mapping", lf.Path)
			}
			return nil, fmt.Errorf("das: duplicate meta path %q", lf.Path)
		}
		node[last] = lf.Value
	}
	return root, nil
}

// checkKey rejects keys that cannot survive the container namespace.
// The dot is the on-disk path separator (see write.go), so it is
// reserved alongside the slash.
func checkKey(key, path string) error {
	if key == "" {
		return fmt.Errorf("das: empty meta key at %q", path)
	}
	if strings.ContainsAny(key, PathSep+".") {
		return fmt.Errorf("das: meta key %q contains a reserved separator", key)
	}
	return nil
}

func supportedLeaf(v any) bool {
	switch v.(type) {
	case string,
		int, int16, int32, int64, uint16, uint32, uint64,
		float32, float64,
		[]int, []int16, []int32, []int64, []uint16, []uint32, []uint64,
		[]float32, []float64:
		return true
	}
	return false
}
