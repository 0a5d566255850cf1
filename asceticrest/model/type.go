package model

import (
	"strings"

	"github.com/krew-solutions/ascetic-rest-go/asceticrest/session"
	specification "github.com/krew-solutions/ascetic-rest-go/asceticrest/specification/domain"
)

const DefaultPrimaryKey = "id"

type Routes struct {
	Index string
	Show  string
}

// Type describes a remote resource: its name, primary key, logical routes
// and how to construct an empty model.
type Type struct {
	Name       string
	PrimaryKey string
	Routes     Routes
	New        func() Model
}

// NewType fills the conventional defaults: primary key "id", routes
// "<name>.index" and "<name>.show", and plain *Entity models.
func NewType(name string, newModel func() Model) *Type {
	t := &Type{
		Name:       name,
		PrimaryKey: DefaultPrimaryKey,
		Routes: Routes{
			Index: name + ".index",
			Show:  name + ".show",
		},
		New: newModel,
	}
	if t.New == nil {
		t.New = func() Model { return &Entity{} }
	}
	return t
}

// Validate checks the type can produce entities. Relationships and the
// hydrator refuse types that fail it.
func (t *Type) Validate() error {
	if t == nil {
		return &ConfigurationError{Subject: "type", Reason: "type is nil"}
	}
	if strings.TrimSpace(t.Name) == "" {
		return &ConfigurationError{Subject: "type", Reason: "name is empty"}
	}
	if t.PrimaryKey == "" {
		return &ConfigurationError{Subject: t.Name, Reason: "primary key is empty"}
	}
	if t.Routes.Index == "" || t.Routes.Show == "" {
		return &ConfigurationError{Subject: t.Name, Reason: "index and show routes are required"}
	}
	if t.New == nil {
		return &ConfigurationError{Subject: t.Name, Reason: "constructor is nil"}
	}
	if m := t.New(); m == nil || m.Base() == nil {
		return &ConfigurationError{Subject: t.Name, Reason: "constructor does not produce an entity"}
	}
	return nil
}

// Blank returns an empty model bound to the type.
func (t *Type) Blank(finder Finder) Model {
	m := t.New()
	m.Base().Attach(t, finder)
	return m
}

// Finder loads entities on behalf of relationships.
type Finder interface {
	// Hydrate builds entities from records already at hand and eager loads
	// includes on them.
	Hydrate(s session.Session, t *Type, records []Record, includes []string) (*Collection, error)
	// FetchAll runs q against the index route of t.
	FetchAll(s session.Session, t *Type, q *specification.Query) (*Collection, error)
	// FetchOne loads one entity by primary key. A nil Model with a nil
	// error means it does not exist.
	FetchOne(s session.Session, t *Type, id any, includes []string) (Model, error)
}
