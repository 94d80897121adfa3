package steps

import (
	"embed"
	"io/fs"
)

//go:embed defs/forms/* defs/openapi/*
var embeddedDefs embed.FS

// EmbeddedFS returns the bundled form definitions (the three-step checkout).
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedDefs, "defs/forms")
	if err != nil {
		// The embed directive guarantees the subpath exists.
		panic(err)
	}
	return sub
}

// EmbeddedOpenAPI returns the bundled OpenAPI document whose component
// schemas mirror the checkout steps.
func EmbeddedOpenAPI() []byte {
	data, err := embeddedDefs.ReadFile("defs/openapi/checkout.yaml")
	if err != nil {
		panic(err)
	}
	return data
}

// Checkout loads the bundled checkout definition.
func Checkout() (*Definition, error) {
	catalog, err := LoadFS(EmbeddedFS())
	if err != nil {
		return nil, err
	}
	def, ok := catalog.Definition("checkout")
	if !ok {
		return nil, fs.ErrNotExist
	}
	return def, nil
}
