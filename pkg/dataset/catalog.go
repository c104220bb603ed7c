// Package dataset implements the YOLO dataset generation core: the class
// catalog, per-directory label policies, the stratified train/val/test split,
// and the idempotent labeler that turns detector output into label files and
// image copies.
package dataset

import "fmt"

// Catalog is the ordered list of class names for a run. Class id equals the
// index in the list. A Catalog is built once and never mutated afterwards.
type Catalog struct {
	names []string
	index map[string]int
}

// NewCatalog builds a catalog from an ordered class list. Duplicate or empty
// names are rejected.
func NewCatalog(names []string) (*Catalog, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("class catalog is empty")
	}

	index := make(map[string]int, len(names))
	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("class %d has an empty name", i)
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate class name %q", name)
		}
		index[name] = i
	}

	return &Catalog{names: append([]string(nil), names...), index: index}, nil
}

// Names returns the class names in id order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Len returns the number of classes.
func (c *Catalog) Len() int { return len(c.names) }

// ID looks up the class id for a name.
func (c *Catalog) ID(name string) (int, bool) {
	id, ok := c.index[name]
	return id, ok
}

// Name returns the class name for an id, or "ID:<n>" when out of range.
func (c *Catalog) Name(id int) string {
	if id < 0 || id >= len(c.names) {
		return fmt.Sprintf("ID:%d", id)
	}
	return c.names[id]
}

// Contains reports whether the name is a known class.
func (c *Catalog) Contains(name string) bool {
	_, ok := c.index[name]
	return ok
}
