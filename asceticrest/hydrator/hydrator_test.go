package hydrator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"syreclabs.com/go/faker"

	"github.com/krew-solutions/ascetic-rest-go/asceticrest/model"
)

type ranked struct {
	model.Entity
	rank  int
	total int
}

func (r *ranked) Hydrated(ctx Context) error {
	r.rank = ctx.Index + 1
	r.total = ctx.Total
	return nil
}

var rankedType = model.NewType("players", func() model.Model { return &ranked{} })

func TestMapManyPassesPosition(t *testing.T) {
	h := New()
	require.NoError(t, h.RegisterType(rankedType))
	records := []model.Record{
		{"id": "1", "name": faker.Name().Name()},
		{"id": "2", "name": faker.Name().Name()},
		{"id": "3", "name": faker.Name().Name()},
	}

	c, err := h.MapMany(rankedType, records)

	require.NoError(t, err)
	players := model.Items[*ranked](c)
	require.Len(t, players, 3)
	for i, p := range players {
		assert.Equal(t, i+1, p.rank)
		assert.Equal(t, 3, p.total)
		assert.Equal(t, records[i]["name"], p.Get("name"))
		assert.Same(t, rankedType, p.Type())
	}
}

func TestMapWithoutRuleFails(t *testing.T) {
	h := New()

	_, err := h.Map(rankedType, model.Record{"id": "1"}, Context{})
	assert.ErrorIs(t, err, ErrNoHydrationRule)

	_, err = h.MapMany(rankedType, nil)
	assert.ErrorIs(t, err, ErrNoHydrationRule)
}

func TestRegisterTypeValidates(t *testing.T) {
	err := New().RegisterType(&model.Type{Name: "broken"})
	var confErr *model.ConfigurationError
	assert.ErrorAs(t, err, &confErr)
}

func TestCasterRunsBeforeRule(t *testing.T) {
	h := New(WithCaster(func(_ *model.Type, record model.Record) (model.Record, error) {
		casted := model.Record{}
		for k, v := range record {
			casted[k] = v
		}
		casted["active"] = record["active"] == "yes"
		return casted, nil
	}))
	var seen model.Record
	h.Register("flags", func(t *model.Type, record model.Record, ctx Context) (model.Model, error) {
		seen = record
		return AttributeRule(t, record, ctx)
	})

	m, err := h.Map(model.NewType("flags", nil), model.Record{"active": "yes"}, Context{Total: 1})

	require.NoError(t, err)
	assert.Equal(t, true, seen["active"])
	assert.Equal(t, true, m.Base().Get("active"))
}

func TestCasterErrorIsWrapped(t *testing.T) {
	bad := errors.New("bad date")
	h := New(WithCaster(func(*model.Type, model.Record) (model.Record, error) {
		return nil, bad
	}))
	require.NoError(t, h.RegisterType(rankedType))

	_, err := h.Map(rankedType, model.Record{}, Context{})
	assert.ErrorIs(t, err, bad)
}

func TestContext(t *testing.T) {
	assert.True(t, Context{Index: 0, Total: 2}.IsFirst())
	assert.True(t, Context{Index: 1, Total: 2}.IsLast())
	assert.False(t, Context{Index: 0, Total: 2}.IsLast())
}
