package argmask

// Option configures Adapt and AdaptAll (functional options pattern).
type Option func(*config)

type config struct {
	name string
	doc  string
}

// WithName sets the wrapper's name, used in logs and in AdaptationError.Func.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithDoc sets the wrapper's own documentation. It wins over the target's documentation.
func WithDoc(doc string) Option {
	return func(c *config) {
		c.doc = doc
	}
}
