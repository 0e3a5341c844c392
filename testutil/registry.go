package testutil

import (
	"context"
	"time"

	"github.com/skosovsky/toolbridge"
)

// NewTestRegistry builds a Registry with long timeout and panic recovery
// enabled, registering the given tools as local tools. It panics on build
// errors; test fixtures should be valid.
func NewTestRegistry(tools ...toolbridge.Tool) *toolbridge.Registry {
	reg, err := toolbridge.Build(context.Background(), nil, nil,
		toolbridge.WithDefaultTimeout(30*time.Second),
		toolbridge.WithRecoverPanics(true),
		toolbridge.WithLocalTools(tools...),
	)
	if err != nil {
		panic(err)
	}
	return reg
}
