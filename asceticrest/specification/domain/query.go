package specification

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/krew-solutions/ascetic-rest-go/asceticrest/option"
)

const (
	DefaultPerPage = 30
	DefaultLimit   = 100
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "", "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	}
	return "", fmt.Errorf("unknown order direction %q", s)
}

type OrderBy struct {
	Field     string
	Direction Direction
}

// ParseOrderBy reads "field" as ascending and "-field" as descending.
func ParseOrderBy(token string) OrderBy {
	if strings.HasPrefix(token, "-") {
		return OrderBy{Field: token[1:], Direction: Desc}
	}
	return OrderBy{Field: token, Direction: Asc}
}

// IncludeGroup is a top-level relation name with the include paths that
// continue below it, e.g. "groups" with ["permissions"] for "groups.permissions".
type IncludeGroup struct {
	Name   string
	Nested []string
}

// Query aggregates everything a fetch sends: route parameters, include paths,
// ordering, pagination and the predicate tree. Mutators change the receiver
// and return it for chaining, so a Query must not be shared between
// concurrent fetches.
type Query struct {
	routeParameters map[string]any
	includes        []string
	order           []OrderBy
	page            option.Option[int]
	perPage         option.Option[int]
	limit           option.Option[int]
	offset          option.Option[string]
	criteria        option.Option[CompositeNode]
}

func NewQuery() *Query {
	return &Query{
		routeParameters: make(map[string]any),
	}
}

func (q *Query) SetRouteParameter(name string, value any) *Query {
	q.routeParameters[name] = value
	return q
}

func (q *Query) RouteParameters() map[string]any {
	return maps.Clone(q.routeParameters)
}

// With replaces the include paths. Calling it without paths clears them.
func (q *Query) With(paths ...string) *Query {
	q.includes = nil
	for _, path := range paths {
		path = strings.Trim(strings.TrimSpace(path), ".")
		if path == "" || slices.Contains(q.includes, path) {
			continue
		}
		q.includes = append(q.includes, path)
	}
	return q
}

func (q *Query) Includes() []string {
	return slices.Clone(q.includes)
}

func (q *Query) IncludeGroups() []IncludeGroup {
	return GroupIncludes(q.includes)
}

// GroupIncludes splits include paths by their first segment, keeping the
// order in which names first appear.
func GroupIncludes(paths []string) []IncludeGroup {
	var groups []IncludeGroup
	index := make(map[string]int)
	for _, path := range paths {
		name, rest, _ := strings.Cut(path, ".")
		if name == "" {
			continue
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, IncludeGroup{Name: name})
		}
		if rest != "" && !slices.Contains(groups[i].Nested, rest) {
			groups[i].Nested = append(groups[i].Nested, rest)
		}
	}
	return groups
}

// OrderBy keeps the first direction given for a field until ResetOrder.
func (q *Query) OrderBy(field string, direction Direction) *Query {
	for _, o := range q.order {
		if o.Field == field {
			return q
		}
	}
	q.order = append(q.order, OrderBy{Field: field, Direction: direction})
	return q
}

func (q *Query) ResetOrder() *Query {
	q.order = nil
	return q
}

func (q *Query) Order() []OrderBy {
	return slices.Clone(q.order)
}

func (q *Query) SetPage(page int) *Query {
	q.page = option.Some(max(page, 1))
	return q
}

func (q *Query) Page() option.Option[int] {
	return q.page
}

func (q *Query) SetPerPage(perPage int) *Query {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	q.perPage = option.Some(perPage)
	return q
}

func (q *Query) PerPage() option.Option[int] {
	return q.perPage
}

func (q *Query) SetLimit(limit int) *Query {
	if limit < 1 {
		limit = DefaultLimit
	}
	q.limit = option.Some(limit)
	return q
}

func (q *Query) Limit() option.Option[int] {
	return q.limit
}

// SetOffset stores an opaque marker; APIs may use record ids rather than
// numeric positions.
func (q *Query) SetOffset(marker string) *Query {
	q.offset = option.Some(marker)
	return q
}

func (q *Query) Offset() option.Option[string] {
	return q.offset
}

func (q *Query) ResetPagination() *Query {
	q.page = option.Nothing[int]()
	q.perPage = option.Nothing[int]()
	q.limit = option.Nothing[int]()
	q.offset = option.Nothing[string]()
	return q
}

// Where replaces the root of the predicate tree. A bare predicate becomes
// the only part of an AND group; nil or an empty group clears the criteria.
func (q *Query) Where(expr Expression) *Query {
	switch e := expr.(type) {
	case CompositeNode:
		q.setCriteria(e)
	case *CompositeNode:
		if e == nil {
			q.setCriteria(CompositeNode{})
		} else {
			q.setCriteria(*e)
		}
	default:
		q.setCriteria(And(expr))
	}
	return q
}

func (q *Query) AndWhere(expr Expression) *Query {
	return q.join(AndJunction, expr)
}

func (q *Query) OrWhere(expr Expression) *Query {
	return q.join(OrJunction, expr)
}

func (q *Query) join(junction Junction, expr Expression) *Query {
	group := CompositeNode{junction: junction}
	root, ok := q.criteria.Get()
	switch {
	case !ok:
		q.setCriteria(group.Add(expr))
	case root.Junction() == junction:
		q.setCriteria(root.Add(expr))
	default:
		q.setCriteria(group.Add(root, expr))
	}
	return q
}

func (q *Query) setCriteria(root CompositeNode) {
	if root.IsEmpty() {
		q.criteria = option.Nothing[CompositeNode]()
		return
	}
	q.criteria = option.Some(root)
}

// Criteria returns the root of the predicate tree, if any.
func (q *Query) Criteria() (CompositeNode, bool) {
	return q.criteria.Get()
}

func (q *Query) Clone() *Query {
	c := *q
	c.routeParameters = maps.Clone(q.routeParameters)
	if c.routeParameters == nil {
		c.routeParameters = make(map[string]any)
	}
	c.includes = slices.Clone(q.includes)
	c.order = slices.Clone(q.order)
	return &c
}
