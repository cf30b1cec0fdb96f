package gateway

import (
	"github.com/globaledutech/payments/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewFromConfig(cfg config.Config, log *zap.Logger) *Client {
	return NewClient(Config{
		BaseURL:   cfg.Gateway.BaseURL,
		KeyID:     cfg.Gateway.KeyID,
		KeySecret: cfg.Gateway.KeySecret,
		Timeout:   cfg.Gateway.Timeout,
	}, log)
}

var Module = fx.Module("gateway",
	fx.Provide(NewFromConfig),
)
