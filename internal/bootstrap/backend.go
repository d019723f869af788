package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/flowstate/flowstate-dashboard/config"
	"github.com/flowstate/flowstate-dashboard/internal/adapters/flowstateapi"
)

// NewBackendClient builds the FlowState API client from configuration.
func NewBackendClient(cfg config.BackendConfig, observer flowstateapi.Observer, logger *slog.Logger) (*flowstateapi.Client, error) {
	client, err := flowstateapi.NewClient(flowstateapi.Config{
		BaseURL:         cfg.BaseURL,
		Timeout:         cfg.Timeout,
		ErrorDetailPath: cfg.ErrorDetailPath,
		Observer:        observer,
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create backend client: %w", err)
	}
	return client, nil
}
