package relationship

import (
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/model"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/session"
	specification "github.com/krew-solutions/ascetic-rest-go/asceticrest/specification/domain"
)

const (
	kindHasMany = "has-many"
	kindHasOne  = "has-one"
)

// scoped is the shared part of the relations fetched by the parent's
// identity: the children carry a foreign key to the parent.
type scoped struct {
	base
}

func newScoped(kind string, parent model.Model, related *model.Type, opts []Option) (scoped, error) {
	b, err := newBase(kind, parent, related, opts)
	if err != nil {
		return scoped{}, err
	}
	if b.foreignKey == "" {
		b.foreignKey = defaultForeignKey(parent.Base().Type())
	}
	if b.localKey == "" {
		b.localKey = parent.Base().Type().PrimaryKey
	}
	return scoped{base: b}, nil
}

func (r scoped) ForeignKey() string {
	return r.foreignKey
}

// load returns the inline children, the fetched children, or nil when
// neither is available.
func (r scoped) load(s session.Session, includes []string) (*model.Collection, error) {
	records, ok, err := r.inline()
	if err != nil {
		return nil, err
	}
	if ok {
		return r.hydrate(s, records, includes)
	}
	if !r.canFetch() {
		return nil, nil
	}
	id := r.entity().Get(r.localKey)
	if id == nil {
		return nil, nil
	}
	q := specification.NewQuery().
		SetRouteParameter(r.foreignKey, id).
		Where(specification.Equal(r.foreignKey, id)).
		With(includes...)
	return r.finder().FetchAll(s, r.related, q)
}

// HasManyRelation is a to-many relation: a user has many groups.
type HasManyRelation struct {
	scoped
}

// HasMany defaults the key to the related name ("groups") and the foreign
// key to "<singular parent name>_<primary key>" ("user_id").
func HasMany(parent model.Model, related *model.Type, opts ...Option) (*HasManyRelation, error) {
	r, err := newScoped(kindHasMany, parent, related, opts)
	if err != nil {
		return nil, err
	}
	if r.key == "" {
		r.key = related.Name
	}
	return &HasManyRelation{scoped: r}, nil
}

// Resolve always yields a *model.Collection, keyed when IndexBy is set.
func (r *HasManyRelation) Resolve(s session.Session, includes []string) (any, error) {
	c, err := r.load(s, includes)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = model.NewCollection(r.related)
	}
	if r.indexBy != "" {
		c = c.IndexBy(r.indexBy)
	}
	return c, nil
}
