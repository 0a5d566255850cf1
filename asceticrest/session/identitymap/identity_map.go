package identitymap

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultSize = 100

// IsolationLevel controls how the identity map caches fetched resources.
type IsolationLevel int

const (
	ReadUncommitted IsolationLevel = iota // Identity map is disabled
	ReadCommitted                         // Identity map is disabled
	RepeatableReads                       // Prevents repeated fetches for existent resources only
	Serializable                          // Prevents repeated fetches for both existent and nonexistent resources
)

var levelNames = map[IsolationLevel]string{
	ReadUncommitted: "read_uncommitted",
	ReadCommitted:   "read_committed",
	RepeatableReads: "repeatable_reads",
	Serializable:    "serializable",
}

func (l IsolationLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("IsolationLevel(%d)", int(l))
}

func ParseIsolationLevel(name string) (IsolationLevel, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	if normalized == "" {
		return ReadUncommitted, nil
	}
	for level, levelName := range levelNames {
		if levelName == normalized {
			return level, nil
		}
	}
	return ReadUncommitted, fmt.Errorf("identitymap: unknown isolation level %q", name)
}

// IdentityMap keeps each resource fetched within a session so that it is
// hydrated only once.
type IdentityMap struct {
	cache    *lru.Cache[Key, any]
	level    IsolationLevel
	strategy isolationStrategy
}

func New(cacheSize int, level IsolationLevel) *IdentityMap {
	if cacheSize < 1 {
		cacheSize = DefaultSize
	}
	cache, err := lru.New[Key, any](cacheSize)
	if err != nil {
		// unreachable: size is positive
		panic(err)
	}
	m := &IdentityMap{cache: cache}
	m.SetIsolationLevel(level)
	return m
}

func (m *IdentityMap) IsolationLevel() IsolationLevel {
	return m.level
}

func (m *IdentityMap) SetIsolationLevel(level IsolationLevel) {
	m.level = level
	switch level {
	case ReadUncommitted, ReadCommitted:
		m.strategy = disabledStrategy{}
	case RepeatableReads:
		m.strategy = repeatableReadsStrategy{cache: m.cache}
	default:
		m.level = Serializable
		m.strategy = serializableStrategy{cache: m.cache}
	}
}

// Enabled reports whether the current isolation level caches anything.
func (m *IdentityMap) Enabled() bool {
	_, disabled := m.strategy.(disabledStrategy)
	return !disabled
}

func (m *IdentityMap) SetSize(size int) {
	if size > 0 {
		m.cache.Resize(size)
	}
}

func (m *IdentityMap) Len() int {
	return m.cache.Len()
}

func (m *IdentityMap) Clear() {
	m.cache.Purge()
}

// Add stores a fetched resource.
func (m *IdentityMap) Add(key Key, value any) {
	m.strategy.add(key, value)
}

// AddAbsent records that the key was fetched but does not exist.
// Only effective with Serializable isolation level.
func (m *IdentityMap) AddAbsent(key Key) {
	m.strategy.addAbsent(key)
}

func (m *IdentityMap) Has(key Key) bool {
	return m.strategy.has(key)
}

func (m *IdentityMap) Remove(key Key) {
	m.cache.Remove(key)
}

// Get returns the stored value. ErrObjectNotFound means the key is known to
// be absent upstream; ErrKeyNotFound means it was never fetched.
func (m *IdentityMap) Get(key Key) (any, error) {
	return m.strategy.get(key)
}

// Get is the typed form of IdentityMap.Get.
func Get[V any](m *IdentityMap, key Key) (V, error) {
	var zero V
	result, err := m.Get(key)
	if err != nil {
		return zero, err
	}
	value, ok := result.(V)
	if !ok {
		return zero, fmt.Errorf("identitymap: %s holds %T", key, result)
	}
	return value, nil
}
