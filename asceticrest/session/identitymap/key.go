package identitymap

import "fmt"

// Key identifies one remote resource instance: the resource type name and
// its primary key rendered as a string.
type Key struct {
	Resource string
	ID       string
}

func NewKey(resource string, id any) Key {
	return Key{Resource: resource, ID: fmt.Sprint(id)}
}

func (k Key) String() string {
	return k.Resource + "#" + k.ID
}
