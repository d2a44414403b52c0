package models

import (
	"github.com/lexanon/lexanon/config"
)

// AppState is an explicit capability object holding the long-lived,
// read-only collaborators of the pipeline. It is passed into every
// invocation; nothing reaches these through ambient lookup.
// Use cmd.NewAppState to create a new instance
type AppState struct {
	Oracle   EntityOracle
	Patterns PatternMatcher
	Config   *config.Config
}
