package payment

import (
	"github.com/globaledutech/payments/internal/clock"
	"github.com/globaledutech/payments/internal/gateway"
	"github.com/globaledutech/payments/internal/payment/repository"
	"github.com/globaledutech/payments/internal/payment/resolver"
	"github.com/globaledutech/payments/internal/payment/service"
	"go.uber.org/fx"
)

func provideChecker(gw *gateway.Client, clk clock.Clock) resolver.StatusChecker {
	return resolver.NewChecker(gw, clk)
}

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(provideChecker),
	fx.Provide(service.New),
)
