package specification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginationClamping(t *testing.T) {
	q := NewQuery().SetPage(-4).SetPerPage(-5).SetLimit(-5)

	assert.Equal(t, 1, q.Page().Unwrap())
	assert.Equal(t, DefaultPerPage, q.PerPage().Unwrap())
	assert.Equal(t, DefaultLimit, q.Limit().Unwrap())
}

func TestPaginationUnsetByDefault(t *testing.T) {
	q := NewQuery()
	assert.True(t, q.Page().IsNothing())
	assert.True(t, q.PerPage().IsNothing())
	assert.True(t, q.Limit().IsNothing())
	assert.True(t, q.Offset().IsNothing())

	q.SetOffset("a1b2").ResetPagination()
	assert.True(t, q.Offset().IsNothing())
}

func TestWithReplacesIncludes(t *testing.T) {
	q := NewQuery().With("groups", "users")
	q.With("contacts")
	assert.Equal(t, []string{"contacts"}, q.Includes())

	q.With()
	assert.Empty(t, q.Includes())
}

func TestWithDeduplicates(t *testing.T) {
	q := NewQuery().With("groups", " groups ", "", "groups.permissions")
	assert.Equal(t, []string{"groups", "groups.permissions"}, q.Includes())
}

func TestIncludeGroups(t *testing.T) {
	q := NewQuery().With("groups", "groups.permissions", "users.contacts")

	groups := q.IncludeGroups()

	require.Len(t, groups, 2)
	assert.Equal(t, IncludeGroup{Name: "groups", Nested: []string{"permissions"}}, groups[0])
	assert.Equal(t, IncludeGroup{Name: "users", Nested: []string{"contacts"}}, groups[1])
}

func TestIncludeGroupsDeepPaths(t *testing.T) {
	groups := GroupIncludes([]string{"a.b.c", "a.d"})
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"b.c", "d"}, groups[0].Nested)
}

func TestOrderFirstWriteWins(t *testing.T) {
	q := NewQuery().OrderBy("date", Desc).OrderBy("name", Asc).OrderBy("date", Asc)
	assert.Equal(t, []OrderBy{{"date", Desc}, {"name", Asc}}, q.Order())

	q.ResetOrder().OrderBy("date", Asc)
	assert.Equal(t, []OrderBy{{"date", Asc}}, q.Order())
}

func TestParseOrderBy(t *testing.T) {
	assert.Equal(t, OrderBy{"date", Desc}, ParseOrderBy("-date"))
	assert.Equal(t, OrderBy{"name", Asc}, ParseOrderBy("name"))

	d, err := ParseDirection("DESC")
	assert.NoError(t, err)
	assert.Equal(t, Desc, d)
	_, err = ParseDirection("up")
	assert.Error(t, err)
}

func TestWhereWrapsPredicate(t *testing.T) {
	q := NewQuery().Where(Equal("id", 1))
	root, ok := q.Criteria()
	require.True(t, ok)
	assert.Equal(t, AndJunction, root.Junction())
	assert.Equal(t, 1, root.Count())
}

func TestWhereEmptyClears(t *testing.T) {
	q := NewQuery().Where(Equal("id", 1)).Where(Or())
	_, ok := q.Criteria()
	assert.False(t, ok)
}

func TestAndWhereOrWhere(t *testing.T) {
	q := NewQuery().AndWhere(Equal("a", 1)).AndWhere(Equal("b", 2))
	root, _ := q.Criteria()
	assert.Equal(t, 2, root.Count())

	q.OrWhere(Equal("c", 3))
	root, _ = q.Criteria()
	assert.Equal(t, OrJunction, root.Junction())
	assert.Equal(t, "(a=1 AND b=2) OR c=3", root.String())
}

func TestCloneIsIndependent(t *testing.T) {
	q := NewQuery().With("groups").SetRouteParameter("id", 1).OrderBy("name", Asc)
	c := q.Clone()
	c.With("users").SetRouteParameter("id", 2).OrderBy("date", Desc)

	assert.Equal(t, []string{"groups"}, q.Includes())
	assert.Equal(t, 1, q.RouteParameters()["id"])
	assert.Len(t, q.Order(), 1)
}
