package model

import (
	"maps"
	"slices"
)

type Record = map[string]any

// Model is implemented by every entity type, usually by embedding Entity.
type Model interface {
	Base() *Entity
}

type relationState int

const (
	unresolved relationState = iota
	resolving
	resolved
)

// Entity is a mutable bag of attributes plus the relations resolved so
// far. Resolved relations are kept apart from the raw attributes.
type Entity struct {
	typ        *Type
	finder     Finder
	attributes map[string]any
	relations  map[string]any
	states     map[string]relationState
}

func NewEntity(t *Type, attributes Record) *Entity {
	e := &Entity{}
	e.Attach(t, nil)
	e.Fill(attributes)
	return e
}

func (e *Entity) Base() *Entity {
	return e
}

// Attach binds the entity to its type and to the finder used for lazy
// relations.
func (e *Entity) Attach(t *Type, finder Finder) {
	e.typ = t
	e.finder = finder
}

func (e *Entity) Type() *Type {
	return e.typ
}

func (e *Entity) Finder() Finder {
	return e.finder
}

func (e *Entity) ID() any {
	if e.typ == nil {
		return e.Get(DefaultPrimaryKey)
	}
	return e.Get(e.typ.PrimaryKey)
}

func (e *Entity) Get(name string) any {
	return e.attributes[name]
}

func (e *Entity) Has(name string) bool {
	_, ok := e.attributes[name]
	return ok
}

func (e *Entity) Set(name string, value any) {
	if e.attributes == nil {
		e.attributes = make(map[string]any)
	}
	e.attributes[name] = value
}

func (e *Entity) Unset(name string) {
	delete(e.attributes, name)
}

// Fill copies every attribute of record.
func (e *Entity) Fill(record Record) {
	for name, value := range record {
		e.Set(name, value)
	}
}

func (e *Entity) Attributes() Record {
	if e.attributes == nil {
		return Record{}
	}
	return maps.Clone(e.attributes)
}

func (e *Entity) AttributeNames() []string {
	return slices.Sorted(maps.Keys(e.attributes))
}

// Resolved returns the cached value of a relation.
func (e *Entity) Resolved(name string) (any, bool) {
	if e.states[name] != resolved {
		return nil, false
	}
	return e.relations[name], true
}

// SetRelation stores a resolved relation value, replacing any cached one.
func (e *Entity) SetRelation(name string, value any) {
	if e.relations == nil {
		e.relations = make(map[string]any)
		e.states = make(map[string]relationState)
	}
	e.relations[name] = value
	e.states[name] = resolved
}

func (e *Entity) state(name string) relationState {
	return e.states[name]
}

func (e *Entity) setState(name string, state relationState) {
	if e.states == nil {
		e.relations = make(map[string]any)
		e.states = make(map[string]relationState)
	}
	e.states[name] = state
}
