package netmon

import (
	"context"

	"github.com/ledgerkeep/ledgerkeep/internal/client/api"
)

// HealthProber проверяет доступность через health endpoint сервера
type HealthProber struct {
	api api.ClientAPI
}

// Compile-time check that HealthProber implements Prober
var _ Prober = (*HealthProber)(nil)

// NewHealthProber создает prober поверх API клиента
func NewHealthProber(client api.ClientAPI) *HealthProber {
	return &HealthProber{api: client}
}

// Probe returns nil if the server health endpoint responds
func (p *HealthProber) Probe(ctx context.Context) error {
	return p.api.Health(ctx)
}
