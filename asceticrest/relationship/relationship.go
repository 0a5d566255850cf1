package relationship

import (
	"github.com/jinzhu/inflection"
	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-rest-go/asceticrest/decoder"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/model"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/session"
)

// base is the part shared by every variant: the parent entity, the related
// type and the inline data key.
type base struct {
	parent  model.Model
	related *model.Type
	options
}

func newBase(kind string, parent model.Model, related *model.Type, opts []Option) (base, error) {
	if err := related.Validate(); err != nil {
		return base{}, errors.Wrap(err, kind)
	}
	if parent == nil || parent.Base() == nil {
		return base{}, &model.ConfigurationError{Subject: kind, Reason: "parent is not an entity"}
	}
	if parent.Base().Type() == nil {
		return base{}, &model.ConfigurationError{Subject: kind, Reason: "parent has no type"}
	}
	b := base{parent: parent, related: related, options: defaultOptions()}
	for _, opt := range opts {
		opt(&b.options)
	}
	if b.indexBy != "" && kind != kindHasMany {
		return base{}, &model.ConfigurationError{Subject: kind, Reason: "indexBy applies to to-many relations only"}
	}
	return b, nil
}

func (b base) Key() string {
	return b.key
}

func (b base) Related() *model.Type {
	return b.related
}

func (b base) entity() *model.Entity {
	return b.parent.Base()
}

func (b base) finder() model.Finder {
	return b.entity().Finder()
}

// inline returns the records the parent payload carries under the key.
func (b base) inline() ([]model.Record, bool, error) {
	raw := b.entity().Get(b.key)
	if raw == nil {
		return nil, false, nil
	}
	switch raw.(type) {
	case map[string]any, []any:
	default:
		return nil, false, nil
	}
	records, err := decoder.NewJSONDecoder().AsRecordList(raw)
	if err != nil {
		return nil, false, errors.Wrapf(err, "relation %s of %s", b.key, b.entity().Type().Name)
	}
	return records, true, nil
}

func (b base) hydrate(s session.Session, records []model.Record, includes []string) (*model.Collection, error) {
	f := b.finder()
	if f == nil {
		return nil, &model.ConfigurationError{Subject: b.entity().Type().Name, Reason: "entity is not attached to a finder"}
	}
	return f.Hydrate(s, b.related, records, includes)
}

func (b base) canFetch() bool {
	return b.lazy && b.finder() != nil
}

func (b base) blank() model.Model {
	return b.related.Blank(b.finder())
}

// defaultForeignKey is "user_id" for a parent of type "users".
func defaultForeignKey(t *model.Type) string {
	return inflection.Singular(t.Name) + "_" + t.PrimaryKey
}
