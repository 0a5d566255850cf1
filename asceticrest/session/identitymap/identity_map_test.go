package identitymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type user struct {
	ID string
}

type group struct {
	ID string
}

// --- Serializable ---

func TestGet(t *testing.T) {
	im := New(100, Serializable)
	obj := &user{ID: "3"}
	key := NewKey("users", 3)
	im.Add(key, obj)

	result, err := Get[*user](im, key)
	require.NoError(t, err)
	assert.Same(t, obj, result)

	_, err = Get[*user](im, NewKey("users", 10))
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestGetWrongType(t *testing.T) {
	im := New(100, Serializable)
	key := NewKey("users", 3)
	im.Add(key, &user{ID: "3"})

	_, err := Get[*group](im, key)
	assert.Error(t, err)
}

func TestLruEviction(t *testing.T) {
	im := New(1, Serializable)
	key := NewKey("users", 3)
	im.Add(key, &user{ID: "3"})
	im.Add(NewKey("users", 10), &user{ID: "10"})

	_, err := im.Get(key)
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.Equal(t, 1, im.Len())
}

func TestSetSize(t *testing.T) {
	im := New(3, Serializable)
	im.Add(NewKey("users", 1), &user{ID: "1"})
	im.Add(NewKey("users", 2), &user{ID: "2"})
	im.Add(NewKey("users", 3), &user{ID: "3"})

	im.SetSize(1)

	assert.Equal(t, 1, im.Len())
	assert.True(t, im.Has(NewKey("users", 3)))
}

func TestRemoveAndClear(t *testing.T) {
	im := New(100, Serializable)
	key := NewKey("users", 3)
	im.Add(key, &user{ID: "3"})
	im.Add(NewKey("users", 4), &user{ID: "4"})

	im.Remove(key)
	_, err := im.Get(key)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	im.Clear()
	assert.Equal(t, 0, im.Len())
}

func TestDifferentResourcesSameId(t *testing.T) {
	im := New(100, Serializable)
	u := &user{ID: "1"}
	g := &group{ID: "1"}
	im.Add(NewKey("users", 1), u)
	im.Add(NewKey("groups", "1"), g)

	uResult, err := Get[*user](im, NewKey("users", "1"))
	require.NoError(t, err)
	assert.Same(t, u, uResult)

	gResult, err := Get[*group](im, NewKey("groups", 1))
	require.NoError(t, err)
	assert.Same(t, g, gResult)
}

func TestSerializableRemembersAbsentResources(t *testing.T) {
	im := New(100, Serializable)
	key := NewKey("users", 1)
	assert.False(t, im.Has(key))

	im.AddAbsent(key)

	_, err := im.Get(key)
	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.True(t, im.Has(key))
}

// --- RepeatableReads ---

func TestRepeatableReads(t *testing.T) {
	im := New(100, RepeatableReads)
	key := NewKey("users", 1)
	assert.False(t, im.Has(key))

	im.AddAbsent(key)
	_, err := im.Get(key)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	obj := &user{ID: "1"}
	im.Add(key, obj)
	result, err := im.Get(key)
	require.NoError(t, err)
	assert.Same(t, obj, result)
	assert.True(t, im.Has(key))
}

// --- ReadUncommitted / ReadCommitted ---

func TestDisabledLevels(t *testing.T) {
	for _, level := range []IsolationLevel{ReadUncommitted, ReadCommitted} {
		im := New(100, level)
		key := NewKey("users", 1)
		im.Add(key, &user{ID: "1"})

		_, err := im.Get(key)
		assert.ErrorIs(t, err, ErrKeyNotFound, level.String())
		assert.False(t, im.Has(key))
		assert.False(t, im.Enabled())
	}
}

func TestSwitchIsolationLevel(t *testing.T) {
	im := New(0, ReadUncommitted)
	assert.False(t, im.Enabled())

	im.SetIsolationLevel(Serializable)
	assert.True(t, im.Enabled())
	assert.Equal(t, Serializable, im.IsolationLevel())
}

func TestParseIsolationLevel(t *testing.T) {
	cases := map[string]IsolationLevel{
		"":                 ReadUncommitted,
		"read_committed":   ReadCommitted,
		"Repeatable-Reads": RepeatableReads,
		"serializable":     Serializable,
	}
	for name, expected := range cases {
		level, err := ParseIsolationLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, expected, level, name)
	}

	_, err := ParseIsolationLevel("snapshot")
	assert.Error(t, err)
}
