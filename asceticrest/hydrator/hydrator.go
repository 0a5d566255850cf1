package hydrator

import (
	"errors"
	"sync"

	pkgerrors "github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-rest-go/asceticrest/model"
)

var ErrNoHydrationRule = errors.New("hydrator: no hydration rule registered")

// Context tells a rule where the record sits in the batch being hydrated.
type Context struct {
	Index int
	Total int
}

func (c Context) IsFirst() bool {
	return c.Index == 0
}

func (c Context) IsLast() bool {
	return c.Index == c.Total-1
}

// Rule builds one model from a record.
type Rule func(t *model.Type, record model.Record, ctx Context) (model.Model, error)

// Caster converts raw values into domain values before a rule sees the
// record.
type Caster func(t *model.Type, record model.Record) (model.Record, error)

// Positioned models receive their place in the batch after hydration.
type Positioned interface {
	Hydrated(ctx Context) error
}

type Option func(*Hydrator)

func WithCaster(caster Caster) Option {
	return func(h *Hydrator) {
		h.caster = caster
	}
}

type Hydrator struct {
	mu     sync.RWMutex
	rules  map[string]Rule
	caster Caster
}

func New(opts ...Option) *Hydrator {
	h := &Hydrator{rules: make(map[string]Rule)}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hydrator) Register(typeName string, rule Rule) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rules[typeName] = rule
}

// RegisterType validates each type and registers AttributeRule for it.
func (h *Hydrator) RegisterType(types ...*model.Type) error {
	for _, t := range types {
		if err := t.Validate(); err != nil {
			return err
		}
		h.Register(t.Name, AttributeRule)
	}
	return nil
}

func (h *Hydrator) Has(typeName string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rules[typeName]
	return ok
}

func (h *Hydrator) rule(t *model.Type) (Rule, error) {
	if t == nil {
		return nil, pkgerrors.Wrap(ErrNoHydrationRule, "nil type")
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	rule, ok := h.rules[t.Name]
	if !ok {
		return nil, pkgerrors.Wrapf(ErrNoHydrationRule, "type %q", t.Name)
	}
	return rule, nil
}

func (h *Hydrator) Map(t *model.Type, record model.Record, ctx Context) (model.Model, error) {
	rule, err := h.rule(t)
	if err != nil {
		return nil, err
	}
	return h.apply(rule, t, record, ctx)
}

func (h *Hydrator) MapMany(t *model.Type, records []model.Record) (*model.Collection, error) {
	rule, err := h.rule(t)
	if err != nil {
		return nil, err
	}
	c := model.NewCollection(t)
	for i, record := range records {
		m, err := h.apply(rule, t, record, Context{Index: i, Total: len(records)})
		if err != nil {
			return nil, err
		}
		c.Add(m)
	}
	return c, nil
}

func (h *Hydrator) apply(rule Rule, t *model.Type, record model.Record, ctx Context) (model.Model, error) {
	if h.caster != nil {
		casted, err := h.caster(t, record)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "hydrator: cast %s record %d", t.Name, ctx.Index)
		}
		record = casted
	}
	m, err := rule(t, record, ctx)
	if err != nil {
		return nil, err
	}
	if p, ok := m.(Positioned); ok {
		if err := p.Hydrated(ctx); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// AttributeRule constructs the model of t and copies every attribute.
func AttributeRule(t *model.Type, record model.Record, _ Context) (model.Model, error) {
	m := t.New()
	if m == nil || m.Base() == nil {
		return nil, &model.ConfigurationError{Subject: t.Name, Reason: "constructor does not produce an entity"}
	}
	m.Base().Attach(t, nil)
	m.Base().Fill(record)
	return m, nil
}
