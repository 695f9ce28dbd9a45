package store

import (
	_ "embed"

	"xfer-generator/internal/directive"
	"xfer-generator/internal/model"
)

//go:embed schema.yaml
var schemaYAML []byte

//go:embed directives.yaml
var directivesYAML []byte

// Model parses the embedded store schema into a registry.
func Model() (*model.Registry, error) {
	return model.ParseSchema(schemaYAML)
}

// Directives parses the embedded directive configuration: the order
// back-relation is skipped and total travels as "amount".
func Directives() (directive.Config, error) {
	return directive.ParseConfig(directivesYAML)
}
