package model

import (
	"fmt"

	specification "github.com/krew-solutions/ascetic-rest-go/asceticrest/specification/domain"
)

// Collection holds entities of one type in order. An indexed collection
// also keys them by an attribute; a later entity with a known key replaces
// the earlier one in place, and entities without the attribute are skipped.
type Collection struct {
	typ     *Type
	indexBy string
	items   []Model
	index   map[string]int
}

func NewCollection(t *Type, items ...Model) *Collection {
	c := &Collection{typ: t}
	for _, m := range items {
		c.Add(m)
	}
	return c
}

func NewIndexedCollection(t *Type, indexBy string, items ...Model) *Collection {
	c := &Collection{typ: t, indexBy: indexBy, index: make(map[string]int)}
	for _, m := range items {
		c.Add(m)
	}
	return c
}

func (c *Collection) Type() *Type {
	return c.typ
}

func (c *Collection) IndexedBy() string {
	return c.indexBy
}

func (c *Collection) Add(m Model) {
	if c.indexBy == "" {
		c.items = append(c.items, m)
		return
	}
	value := m.Base().Get(c.indexBy)
	if value == nil {
		return
	}
	key := fmt.Sprint(value)
	if i, ok := c.index[key]; ok {
		c.items[i] = m
		return
	}
	c.index[key] = len(c.items)
	c.items = append(c.items, m)
}

// IndexBy returns a copy keyed by attribute.
func (c *Collection) IndexBy(attribute string) *Collection {
	return NewIndexedCollection(c.typ, attribute, c.items...)
}

func (c *Collection) Len() int {
	return len(c.items)
}

func (c *Collection) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *Collection) Items() []Model {
	return append([]Model(nil), c.items...)
}

func (c *Collection) At(i int) Model {
	return c.items[i]
}

func (c *Collection) First() (Model, bool) {
	if len(c.items) == 0 {
		return nil, false
	}
	return c.items[0], true
}

func (c *Collection) ByKey(key any) (Model, bool) {
	if c.index == nil {
		return nil, false
	}
	i, ok := c.index[fmt.Sprint(key)]
	if !ok {
		return nil, false
	}
	return c.items[i], true
}

// Keys lists index keys in insertion order.
func (c *Collection) Keys() []string {
	if c.indexBy == "" {
		return nil
	}
	keys := make([]string, len(c.items))
	for key, i := range c.index {
		keys[i] = key
	}
	return keys
}

// Filter keeps the entities whose attributes satisfy expr.
func (c *Collection) Filter(expr specification.Visitable) (*Collection, error) {
	result := &Collection{typ: c.typ, indexBy: c.indexBy}
	if c.indexBy != "" {
		result.index = make(map[string]int)
	}
	for _, m := range c.items {
		ok, err := specification.Matches(expr, specification.MapContext(m.Base().Attributes()))
		if err != nil {
			return nil, err
		}
		if ok {
			result.Add(m)
		}
	}
	return result, nil
}

// Items returns the entities of c as T, skipping any of another type.
func Items[T Model](c *Collection) []T {
	result := make([]T, 0, c.Len())
	for _, m := range c.items {
		if typed, ok := m.(T); ok {
			result = append(result, typed)
		}
	}
	return result
}
