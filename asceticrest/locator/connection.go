package locator

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"net/http"

	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-rest-go/asceticrest/decoder"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/hydrator"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/model"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/session"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/session/identitymap"
	specification "github.com/krew-solutions/ascetic-rest-go/asceticrest/specification/domain"
	encoders "github.com/krew-solutions/ascetic-rest-go/asceticrest/specification/infrastructure"
)

// restSession returns the REST view of s. Fetching through any other kind
// of session is a wiring mistake.
func restSession(s session.Session) (session.RestSession, error) {
	rs, ok := s.(session.RestSession)
	if !ok {
		return nil, &model.ConfigurationError{Subject: "session", Reason: "not a REST session"}
	}
	return rs, nil
}

type Option func(*Connection)

func WithEncoder(encoder encoders.Encoder) Option {
	return func(c *Connection) {
		c.encoder = encoder
	}
}

func WithDecoder(decoder decoder.Decoder) Option {
	return func(c *Connection) {
		c.decoder = decoder
	}
}

func WithHydrator(h *hydrator.Hydrator) Option {
	return func(c *Connection) {
		c.hydrator = h
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Connection) {
		c.logger = logger
	}
}

// WithStrictReads makes Find, FindOneBy, FindBy and FindAll return upstream
// failures instead of an empty result.
func WithStrictReads() Option {
	return func(c *Connection) {
		c.strict = true
	}
}

// Connection bundles the collaborators of every fetch: the encoder of the
// API dialect, the decoder, the hydrator and the logger. It is immutable
// after construction and may be shared; the session is passed per call.
type Connection struct {
	encoder  encoders.Encoder
	decoder  decoder.Decoder
	hydrator *hydrator.Hydrator
	logger   *slog.Logger
	strict   bool
}

func NewConnection(opts ...Option) *Connection {
	c := &Connection{
		encoder:  encoders.NewSimpleEncoder(),
		decoder:  decoder.NewJSONDecoder(),
		hydrator: hydrator.New(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Connection) Encoder() encoders.Encoder {
	return c.encoder
}

func (c *Connection) Decoder() decoder.Decoder {
	return c.decoder
}

func (c *Connection) Hydrator() *hydrator.Hydrator {
	return c.hydrator
}

func (c *Connection) Logger() *slog.Logger {
	return c.logger
}

// Register installs the attribute hydration rule for every type that has no
// rule yet.
func (c *Connection) Register(types ...*model.Type) error {
	for _, t := range types {
		if c.hydrator.Has(t.Name) {
			continue
		}
		if err := c.hydrator.RegisterType(t); err != nil {
			return err
		}
	}
	return nil
}

// FetchRaw encodes q, sends it to route and returns the decoded payload.
// Capability errors are returned as they are; transport and status
// failures come back as *FetchError.
func (c *Connection) FetchRaw(s session.Session, route string, q *specification.Query, identity any) (any, error) {
	rs, err := restSession(s)
	if err != nil {
		return nil, err
	}
	params, err := c.encoder.Encode(q)
	if err != nil {
		return nil, err
	}
	parameters := make(map[string]any, len(params))
	maps.Copy(parameters, q.RouteParameters())
	maps.Copy(parameters, params)

	resp, err := rs.Execute(session.Request{
		Method:     http.MethodGet,
		Route:      route,
		Parameters: parameters,
	})
	if err != nil {
		return nil, c.fetchError(s.Context(), route, identity, err)
	}
	payload, err := c.decoder.Decode(resp)
	if err != nil {
		return nil, c.fetchError(s.Context(), route, identity, err)
	}
	return payload, nil
}

func (c *Connection) fetchError(ctx context.Context, route string, identity any, err error) error {
	level := slog.LevelError
	var statusErr *decoder.StatusError
	if errors.As(err, &statusErr) && statusErr.NotFound() {
		level = slog.LevelDebug
	}
	c.logger.Log(ctx, level, "fetch failed",
		slog.String("route", route),
		slog.Any("identity", identity),
		slog.String("error", err.Error()),
	)
	return &FetchError{Route: route, Identity: identity, Err: err}
}

// Hydrate implements model.Finder.
func (c *Connection) Hydrate(s session.Session, t *model.Type, records []model.Record, includes []string) (*model.Collection, error) {
	items, err := c.hydrator.MapMany(t, records)
	if err != nil {
		return nil, err
	}
	im := identityMap(s)
	result := model.NewCollection(t)
	for _, m := range items.Items() {
		e := m.Base()
		e.Attach(t, c)
		if id := e.ID(); id != nil && im != nil {
			key := identitymap.NewKey(t.Name, id)
			if known, err := im.Get(key); err == nil {
				m = known.(model.Model)
			} else {
				im.Add(key, m)
			}
		}
		result.Add(m)
	}
	if err := c.eagerLoad(s, result, includes); err != nil {
		return nil, err
	}
	return result, nil
}

// eagerLoad resolves every top-level include on every entity, forwarding
// the deeper paths, one relation after another in declaration order.
func (c *Connection) eagerLoad(s session.Session, items *model.Collection, includes []string) error {
	if items.IsEmpty() {
		return nil
	}
	for _, group := range specification.GroupIncludes(includes) {
		for _, m := range items.Items() {
			if _, err := model.Related(s, m, group.Name, group.Nested...); err != nil {
				return errors.Wrapf(err, "eager load %s.%s", items.Type().Name, group.Name)
			}
		}
	}
	return nil
}

// FetchAll implements model.Finder.
func (c *Connection) FetchAll(s session.Session, t *model.Type, q *specification.Query) (*model.Collection, error) {
	payload, err := c.FetchRaw(s, t.Routes.Index, q, nil)
	if err != nil {
		return nil, err
	}
	return c.hydratePayload(s, t, payload, q.Includes())
}

func (c *Connection) hydratePayload(s session.Session, t *model.Type, payload any, includes []string) (*model.Collection, error) {
	records, err := c.decoder.AsRecordList(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", t.Name)
	}
	return c.Hydrate(s, t, records, includes)
}

// FetchOne implements model.Finder. The show route receives the primary
// key both as route parameter and as equality filter. A 404 means absent.
func (c *Connection) FetchOne(s session.Session, t *model.Type, id any, includes []string) (model.Model, error) {
	im := identityMap(s)
	key := identitymap.NewKey(t.Name, id)
	if im != nil && im.Has(key) {
		known, err := im.Get(key)
		if errors.Is(err, identitymap.ErrObjectNotFound) {
			return nil, nil
		}
		if err == nil {
			m := known.(model.Model)
			if err := c.eagerLoad(s, model.NewCollection(t, m), includes); err != nil {
				return nil, err
			}
			return m, nil
		}
	}

	q := specification.NewQuery().
		SetRouteParameter(t.PrimaryKey, id).
		Where(specification.Equal(t.PrimaryKey, id)).
		With(includes...)
	payload, err := c.FetchRaw(s, t.Routes.Show, q, id)
	if err != nil {
		var statusErr *decoder.StatusError
		if errors.As(err, &statusErr) && statusErr.NotFound() {
			if im != nil {
				im.AddAbsent(key)
			}
			return nil, nil
		}
		return nil, err
	}
	items, err := c.hydratePayload(s, t, payload, includes)
	if err != nil {
		return nil, err
	}
	m, ok := items.First()
	if !ok {
		if im != nil {
			im.AddAbsent(key)
		}
		return nil, nil
	}
	return m, nil
}

func identityMap(s session.Session) *identitymap.IdentityMap {
	rs, ok := s.(session.RestSession)
	if !ok {
		return nil
	}
	im := rs.IdentityMap()
	if im == nil || !im.Enabled() {
		return nil
	}
	return im
}
