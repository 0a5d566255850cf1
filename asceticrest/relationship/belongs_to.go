package relationship

import (
	"github.com/jinzhu/inflection"

	"github.com/krew-solutions/ascetic-rest-go/asceticrest/model"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/session"
)

const kindBelongsTo = "belongs-to"

// BelongsToRelation is a to-one relation where the parent holds the foreign
// key: a post with "author_id" belongs to a user.
type BelongsToRelation struct {
	base
}

// BelongsTo defaults the key to the singular related name ("user") and the
// identity key to "<key>_<primary key>" ("user_id").
func BelongsTo(parent model.Model, related *model.Type, opts ...Option) (*BelongsToRelation, error) {
	b, err := newBase(kindBelongsTo, parent, related, opts)
	if err != nil {
		return nil, err
	}
	if b.key == "" {
		b.key = inflection.Singular(related.Name)
	}
	if b.identityKey == "" {
		b.identityKey = b.key + "_" + related.PrimaryKey
	}
	return &BelongsToRelation{base: b}, nil
}

func (r *BelongsToRelation) IdentityKey() string {
	return r.identityKey
}

func (r *BelongsToRelation) Resolve(s session.Session, includes []string) (any, error) {
	records, ok, err := r.inline()
	if err != nil {
		return nil, err
	}
	if ok {
		c, err := r.hydrate(s, records, includes)
		if err != nil {
			return nil, err
		}
		if m, ok := c.First(); ok {
			return m, nil
		}
		return r.empty(), nil
	}

	if !r.canFetch() {
		return r.empty(), nil
	}
	id := r.entity().Get(r.identityKey)
	if id == nil {
		return r.empty(), nil
	}
	m, err := r.finder().FetchOne(s, r.related, id, includes)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return r.empty(), nil
	}
	return m, nil
}

func (r *BelongsToRelation) empty() any {
	if r.nullOnNotFound {
		return nil
	}
	return r.blank()
}
