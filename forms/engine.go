package forms

import "campus-gms/catalog"

// Engine hands out forms for the categories of a catalog.
type Engine struct {
	catalog *catalog.Catalog
	opts    []Option
}

// NewEngine builds an engine over c. opts apply to every form it creates.
func NewEngine(c *catalog.Catalog, opts ...Option) *Engine {
	return &Engine{catalog: c, opts: opts}
}

// Form returns the form for the category key.
func (e *Engine) Form(key string) (*Form, error) {
	def, err := e.catalog.Get(key)
	if err != nil {
		return nil, err
	}
	return New(def, e.opts...), nil
}

// Catalog returns the catalog behind the engine.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}
