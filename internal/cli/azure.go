package cli

import (
	"github.com/zgpcy/azure-cost-report/internal/azure"
	"github.com/zgpcy/azure-cost-report/internal/config"
	"github.com/zgpcy/azure-cost-report/internal/logger"
	"github.com/zgpcy/azure-cost-report/internal/usage"
)

// AzureBackends authenticates with the default credential chain and
// builds the configured usage source plus the resource type client.
func AzureBackends(cfg *config.Config, log *logger.Logger) (Backends, error) {
	cred, err := azure.NewCredential()
	if err != nil {
		return Backends{}, err
	}

	resources, err := azure.NewResourceClient(cred, cfg, log)
	if err != nil {
		return Backends{}, err
	}

	var source usage.Source
	switch cfg.Source {
	case config.SourceCostManagement:
		source, err = azure.NewCostManagementClient(cred, cfg, log)
	default:
		source, err = azure.NewConsumptionClient(cred, cfg, log)
	}
	if err != nil {
		return Backends{}, err
	}

	return Backends{Source: source, Types: resources}, nil
}
