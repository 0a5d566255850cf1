package relationship

import (
	"github.com/jinzhu/inflection"

	"github.com/krew-solutions/ascetic-rest-go/asceticrest/model"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/session"
)

// HasOneRelation is a to-one relation owned by the parent: a user has one
// profile. It loads like HasMany and keeps the first child.
type HasOneRelation struct {
	scoped
}

func HasOne(parent model.Model, related *model.Type, opts ...Option) (*HasOneRelation, error) {
	r, err := newScoped(kindHasOne, parent, related, opts)
	if err != nil {
		return nil, err
	}
	if r.key == "" {
		r.key = inflection.Singular(related.Name)
	}
	return &HasOneRelation{scoped: r}, nil
}

func (r *HasOneRelation) Resolve(s session.Session, includes []string) (any, error) {
	c, err := r.load(s, includes)
	if err != nil {
		return nil, err
	}
	if c != nil {
		if m, ok := c.First(); ok {
			return m, nil
		}
	}
	if r.nullOnNotFound {
		return nil, nil
	}
	return r.blank(), nil
}
