package relationship

import "github.com/krew-solutions/ascetic-rest-go/asceticrest/model"

// Belongs declares a BelongsTo relation inside Relations().
func Belongs(related *model.Type, opts ...Option) model.RelationFactory {
	return func(parent model.Model) (model.Relationship, error) {
		r, err := BelongsTo(parent, related, opts...)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
}

// Many declares a HasMany relation inside Relations().
func Many(related *model.Type, opts ...Option) model.RelationFactory {
	return func(parent model.Model) (model.Relationship, error) {
		r, err := HasMany(parent, related, opts...)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
}

// One declares a HasOne relation inside Relations().
func One(related *model.Type, opts ...Option) model.RelationFactory {
	return func(parent model.Model) (model.Relationship, error) {
		r, err := HasOne(parent, related, opts...)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
}
