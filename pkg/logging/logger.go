// Package logging provides the process logger and helpers for keeping
// secrets out of log output.
package logging

import (
	"go.uber.org/zap"
)

// New builds the root logger for the given environment. Production gets the
// JSON encoder at info level; everything else gets the human-readable
// development encoder with debug enabled.
func New(env string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	return cfg.Build()
}
