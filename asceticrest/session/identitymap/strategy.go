package identitymap

import lru "github.com/hashicorp/golang-lru/v2"

type nonexistentObject struct{}

var nonexistent = &nonexistentObject{}

type isolationStrategy interface {
	add(key Key, value any)
	addAbsent(key Key)
	get(key Key) (any, error)
	has(key Key) bool
}

type disabledStrategy struct{}

func (disabledStrategy) add(Key, any)  {}
func (disabledStrategy) addAbsent(Key) {}
func (disabledStrategy) has(Key) bool  { return false }
func (disabledStrategy) get(Key) (any, error) {
	return nil, ErrKeyNotFound
}

// repeatableReadsStrategy caches existent resources only.
type repeatableReadsStrategy struct {
	cache *lru.Cache[Key, any]
}

func (s repeatableReadsStrategy) add(key Key, value any) {
	s.cache.Add(key, value)
}

func (s repeatableReadsStrategy) addAbsent(Key) {}

func (s repeatableReadsStrategy) get(key Key) (any, error) {
	value, ok := s.cache.Get(key)
	if !ok || value == nonexistent {
		return nil, ErrKeyNotFound
	}
	return value, nil
}

func (s repeatableReadsStrategy) has(key Key) bool {
	value, ok := s.cache.Get(key)
	return ok && value != nonexistent
}

// serializableStrategy caches both existent and nonexistent resources.
type serializableStrategy struct {
	cache *lru.Cache[Key, any]
}

func (s serializableStrategy) add(key Key, value any) {
	s.cache.Add(key, value)
}

func (s serializableStrategy) addAbsent(key Key) {
	s.cache.Add(key, nonexistent)
}

func (s serializableStrategy) get(key Key) (any, error) {
	value, ok := s.cache.Get(key)
	if !ok {
		return nil, ErrKeyNotFound
	}
	if value == nonexistent {
		return nil, ErrObjectNotFound
	}
	return value, nil
}

func (s serializableStrategy) has(key Key) bool {
	return s.cache.Contains(key)
}
