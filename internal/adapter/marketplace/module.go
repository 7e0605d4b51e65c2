package marketplace

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/rmawad/partsync/internal/config"
)

// Module wires the marketplace HTTP client.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	return NewHTTPClient(p.Config.APIBaseURL, p.Config.APIToken, p.Logger)
}
