package specification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s "github.com/krew-solutions/ascetic-rest-go/asceticrest/specification/domain"
)

func TestSimpleEncoderOrder(t *testing.T) {
	q := s.NewQuery().OrderBy("date", s.Desc).OrderBy("name", s.Asc)

	params, err := NewSimpleEncoder().Encode(q)

	require.NoError(t, err)
	assert.Equal(t, "-date,name", params["order"])
}

func TestSimpleEncoder(t *testing.T) {
	q := s.NewQuery().
		Where(s.And(s.Equal("status", "active"), s.In("type", []string{"a", "b"}))).
		SetPage(2).SetPerPage(10).
		With("groups", "groups.permissions")

	params, err := NewSimpleEncoder().Encode(q)

	require.NoError(t, err)
	assert.Equal(t, Params{
		"status":   "active",
		"type":     "a,b",
		"page":     2,
		"per_page": 10,
		"include":  "groups,groups.permissions",
	}, params)
	assert.Equal(t, "include=groups%2Cgroups.permissions&page=2&per_page=10&status=active&type=a%2Cb", params.Encode())
}

func TestSimpleEncoderRepeatedFieldKeepsLastValue(t *testing.T) {
	q := s.NewQuery().Where(s.And(s.Equal("a", 1), s.Equal("a", 2)))
	params, err := NewSimpleEncoder().Encode(q)
	require.NoError(t, err)
	assert.Equal(t, Params{"a": 2}, params)
}

func TestSimpleEncoderIgnoresLimit(t *testing.T) {
	params, err := NewSimpleEncoder().Encode(s.NewQuery().SetLimit(5).SetOffset("x"))
	require.NoError(t, err)
	assert.Empty(t, params)
}

func TestSimpleEncoderSnakeCaseOption(t *testing.T) {
	q := s.NewQuery().With("userGroups.somePermissions")
	params, err := NewSimpleEncoder(WithSnakeCaseIncludes()).Encode(q)
	require.NoError(t, err)
	assert.Equal(t, "user_groups.some_permissions", params["include"])
}
