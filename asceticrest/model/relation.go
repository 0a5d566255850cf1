package model

import (
	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-rest-go/asceticrest/session"
)

// Relationship obtains the value of one relation of one entity. It is built
// on every access and is not stored on the entity.
type Relationship interface {
	// Key is the attribute under which the response may inline the related
	// data.
	Key() string
	// Resolve returns a Model, nil, or a *Collection. includes are the
	// paths to eager load below the relation.
	Resolve(s session.Session, includes []string) (any, error)
}

type RelationFactory func(parent Model) (Relationship, error)

// Relational declares the relations of an entity type by name.
type Relational interface {
	Relations() map[string]RelationFactory
}

// Related resolves the named relation once and caches the result on the
// entity. The raw attribute the value came from is dropped afterwards.
func Related(s session.Session, m Model, name string, includes ...string) (any, error) {
	e := m.Base()
	switch e.state(name) {
	case resolved:
		return e.relations[name], nil
	case resolving:
		return nil, errors.Wrapf(ErrRelationCycle, "%s.%s", typeName(e), name)
	}

	rel, err := Relation(m, name)
	if err != nil {
		return nil, err
	}

	e.setState(name, resolving)
	value, err := rel.Resolve(s, includes)
	if err != nil {
		e.setState(name, unresolved)
		return nil, err
	}
	e.SetRelation(name, value)
	e.Unset(rel.Key())
	return value, nil
}

// Relation builds the named relationship of m without resolving it.
func Relation(m Model, name string) (Relationship, error) {
	relational, ok := m.(Relational)
	if !ok {
		return nil, errors.Wrapf(ErrUndefinedRelation, "%s.%s", typeName(m.Base()), name)
	}
	factory, ok := relational.Relations()[name]
	if !ok {
		return nil, errors.Wrapf(ErrUndefinedRelation, "%s.%s", typeName(m.Base()), name)
	}
	return factory(m)
}

// One resolves a to-one relation. The zero T is returned when the related
// entity is absent.
func One[T Model](s session.Session, m Model, name string, includes ...string) (T, error) {
	var zero T
	value, err := Related(s, m, name, includes...)
	if err != nil || value == nil {
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		return zero, errors.Errorf("model: relation %s holds %T", name, value)
	}
	return typed, nil
}

// Many resolves a to-many relation.
func Many(s session.Session, m Model, name string, includes ...string) (*Collection, error) {
	value, err := Related(s, m, name, includes...)
	if err != nil {
		return nil, err
	}
	c, ok := value.(*Collection)
	if !ok {
		return nil, errors.Errorf("model: relation %s holds %T", name, value)
	}
	return c, nil
}

func typeName(e *Entity) string {
	if e.typ == nil {
		return "entity"
	}
	return e.typ.Name
}
