package realtime

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/rmawad/partsync/internal/config"
	"github.com/rmawad/partsync/internal/refresher"
)

// Module wires the websocket transport and subscription manager.
var Module = fx.Provide(newTransport, newManager)

type transportParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newTransport(p transportParams) Transport {
	return NewWSTransport(p.Config.RealtimeURL, p.Config.APIToken, p.Config.ReconnectMaxBackoff, p.Logger)
}

type managerParams struct {
	fx.In

	Transport Transport
	Refresher *refresher.Refresher
	Logger    *slog.Logger
}

func newManager(p managerParams) *Manager {
	return NewManager(p.Transport, p.Refresher, p.Logger)
}
