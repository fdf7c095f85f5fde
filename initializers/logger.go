package initializers

import (
	"github.com/Kariqs/storefront-api/logging"
	"go.uber.org/zap"
)

const serviceName = "storefront-api"

// NewLogger builds the process logger and installs it as zap's global logger.
func NewLogger(cfg Config) (*zap.Logger, error) {
	logger, err := logging.NewLogger(serviceName, cfg.AppEnv)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}
