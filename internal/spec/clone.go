package spec

import "github.com/mohae/deepcopy"

// Clone returns a deep copy of d. Nothing in the copy aliases d.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	return deepcopy.Copy(d).(*Document)
}

// Clone returns a deep copy of s.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	return deepcopy.Copy(s).(*Schema)
}

// CloneValue deep-copies an arbitrary node of the document tree.
func CloneValue[T any](v T) T {
	c, _ := deepcopy.Copy(v).(T)
	return c
}
