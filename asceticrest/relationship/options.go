package relationship

type options struct {
	key            string
	identityKey    string
	foreignKey     string
	localKey       string
	indexBy        string
	lazy           bool
	nullOnNotFound bool
}

func defaultOptions() options {
	return options{lazy: true, nullOnNotFound: true}
}

type Option func(*options)

// Key is the attribute under which the parent payload inlines the related
// data. It defaults to the relation's natural name.
func Key(key string) Option {
	return func(o *options) {
		o.key = key
	}
}

// IdentityKey is the parent attribute holding the related primary key
// (to-one-indirect only).
func IdentityKey(key string) Option {
	return func(o *options) {
		o.identityKey = key
	}
}

// ForeignKey is the child attribute referencing the parent (to-many and
// to-one-direct).
func ForeignKey(key string) Option {
	return func(o *options) {
		o.foreignKey = key
	}
}

// LocalKey is the parent attribute the foreign key points at.
func LocalKey(key string) Option {
	return func(o *options) {
		o.localKey = key
	}
}

func IndexBy(attribute string) Option {
	return func(o *options) {
		o.indexBy = attribute
	}
}

func Lazy(lazy bool) Option {
	return func(o *options) {
		o.lazy = lazy
	}
}

func NullOnNotFound(null bool) Option {
	return func(o *options) {
		o.nullOnNotFound = null
	}
}
