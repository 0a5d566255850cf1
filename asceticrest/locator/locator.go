package locator

import (
	"log/slog"
	"slices"

	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-rest-go/asceticrest/decoder"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/model"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/option"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/session"
	specification "github.com/krew-solutions/ascetic-rest-go/asceticrest/specification/domain"
)

// Page is one page of a paginated fetch.
type Page struct {
	Items       *model.Collection
	Total       int
	CurrentPage int
	PerPage     int
}

// Locator fetches entities of one type and returns them as T.
type Locator[T model.Model] struct {
	conn *Connection
	typ  *model.Type
}

// New registers the hydration rule of t on the connection when it has none.
func New[T model.Model](conn *Connection, t *model.Type) (*Locator[T], error) {
	if err := conn.Register(t); err != nil {
		return nil, err
	}
	return &Locator[T]{conn: conn, typ: t}, nil
}

func (l *Locator[T]) Type() *model.Type {
	return l.typ
}

// Query returns an empty query to be passed to Fetch or Paginate.
func (l *Locator[T]) Query() *specification.Query {
	return specification.NewQuery()
}

// Find returns the entity with the given primary key, or the zero T when it
// is absent or the upstream failed.
func (l *Locator[T]) Find(s session.Session, id any, includes ...string) (T, error) {
	var zero T
	m, err := l.conn.FetchOne(s, l.typ, id, includes)
	if err != nil {
		return zero, l.degrade(err, "find", id)
	}
	return l.cast(m)
}

func (l *Locator[T]) FindOrFail(s session.Session, id any, includes ...string) (T, error) {
	var zero T
	m, err := l.conn.FetchOne(s, l.typ, id, includes)
	if err != nil {
		return zero, err
	}
	if m == nil {
		return zero, &NotFoundError{Type: l.typ.Name, ID: id}
	}
	return l.cast(m)
}

// FindBy turns criteria into AND-joined equality predicates, slices into
// "in" predicates. Fields are visited sorted. Limit and offset only reach the
// upstream when the encoder supports marker pagination; otherwise they are
// dropped with a warning.
func (l *Locator[T]) FindBy(
	s session.Session,
	criteria map[string]any,
	order []specification.OrderBy,
	limit option.Option[int],
	offset option.Option[string],
) ([]T, error) {
	q := l.Query().Where(CriteriaExpression(criteria))
	for _, o := range order {
		q.OrderBy(o.Field, o.Direction)
	}
	if n, ok := limit.Get(); ok {
		q.SetLimit(n)
	}
	if marker, ok := offset.Get(); ok {
		q.SetOffset(marker)
	}
	if (limit.IsSome() || offset.IsSome()) && !l.conn.encoder.Capabilities().MarkerPagination {
		l.conn.logger.WarnContext(s.Context(), "limit and offset are not supported by the encoder",
			slog.String("type", l.typ.Name),
			slog.String("encoder", l.conn.encoder.Name()),
		)
	}
	c, err := l.conn.FetchAll(s, l.typ, q)
	if err != nil {
		return []T{}, l.degrade(err, "find by", nil)
	}
	return model.Items[T](c), nil
}

// FindOneBy returns the first entity matching criteria, or the zero T.
func (l *Locator[T]) FindOneBy(s session.Session, criteria map[string]any) (T, error) {
	var zero T
	items, err := l.FindBy(s, criteria, nil, option.Nothing[int](), option.Nothing[string]())
	if err != nil || len(items) == 0 {
		return zero, err
	}
	return items[0], nil
}

func (l *Locator[T]) FindAll(s session.Session, includes ...string) ([]T, error) {
	c, err := l.conn.FetchAll(s, l.typ, l.Query().With(includes...))
	if err != nil {
		return []T{}, l.degrade(err, "find all", nil)
	}
	return model.Items[T](c), nil
}

// Fetch runs q and returns the hydrated collection. Failures are returned.
func (l *Locator[T]) Fetch(s session.Session, q *specification.Query) (*model.Collection, error) {
	return l.conn.FetchAll(s, l.typ, q)
}

// Paginate fetches one page of q. Total, current page and page size come
// from the response metadata when present, otherwise from the request and
// the number of records received.
func (l *Locator[T]) Paginate(s session.Session, q *specification.Query, page, perPage int) (*Page, error) {
	if q == nil {
		q = l.Query()
	} else {
		q = q.Clone()
	}
	q.SetPage(page).SetPerPage(perPage)

	payload, err := l.conn.FetchRaw(s, l.typ.Routes.Index, q, nil)
	if err != nil {
		return nil, err
	}
	c, err := l.conn.hydratePayload(s, l.typ, payload, q.Includes())
	if err != nil {
		return nil, err
	}

	result := &Page{
		Items:       c,
		Total:       c.Len(),
		CurrentPage: q.Page().UnwrapOr(1),
		PerPage:     c.Len(),
	}
	if meta, ok := l.conn.decoder.Pagination(payload); ok {
		result.Total = meta.Total
		if meta.CurrentPage > 0 {
			result.CurrentPage = meta.CurrentPage
		}
		if meta.PerPage > 0 {
			result.PerPage = meta.PerPage
		}
	}
	return result, nil
}

// FetchRaw returns the decoded payload of q without hydrating it.
func (l *Locator[T]) FetchRaw(s session.Session, q *specification.Query) (any, error) {
	return l.conn.FetchRaw(s, l.typ.Routes.Index, q, nil)
}

// Records returns the normalized records of q without hydrating them.
func (l *Locator[T]) Records(s session.Session, q *specification.Query) ([]decoder.Record, error) {
	payload, err := l.FetchRaw(s, q)
	if err != nil {
		return nil, err
	}
	return l.conn.decoder.AsRecordList(payload)
}

func (l *Locator[T]) cast(m model.Model) (T, error) {
	var zero T
	if m == nil {
		return zero, nil
	}
	typed, ok := m.(T)
	if !ok {
		return zero, &model.ConfigurationError{
			Subject: l.typ.Name,
			Reason:  "hydrated model has unexpected type",
		}
	}
	return typed, nil
}

// degrade turns upstream failures into an empty result unless the
// connection is strict. Other errors are caller mistakes and are returned.
func (l *Locator[T]) degrade(err error, operation string, identity any) error {
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) || l.conn.strict {
		return err
	}
	l.conn.logger.Warn(operation+" degraded to empty result",
		slog.String("type", l.typ.Name),
		slog.String("route", fetchErr.Route),
		slog.Any("identity", identity),
	)
	return nil
}

// CriteriaExpression builds the AND of one predicate per criteria entry.
func CriteriaExpression(criteria map[string]any) specification.CompositeNode {
	fields := make([]string, 0, len(criteria))
	for field := range criteria {
		fields = append(fields, field)
	}
	slices.Sort(fields)

	root := specification.And()
	for _, field := range fields {
		value := criteria[field]
		if isList(value) {
			root = root.Add(specification.In(field, value))
		} else {
			root = root.Add(specification.Equal(field, value))
		}
	}
	return root
}

func isList(value any) bool {
	switch value.(type) {
	case []any, []string, []int, []int64, []float64:
		return true
	}
	return false
}
