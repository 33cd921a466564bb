package driven

import (
	"context"

	"github.com/ericfisherdev/quantumvault/internal/domain/model"
)

// QuantumRunner executes a circuit on a simulator or device and returns the
// measurement counts.
type QuantumRunner interface {
	Run(ctx context.Context, circuit model.Circuit, shots int) (model.MeasurementCounts, error)
	// Name identifies the backend for logging.
	Name() string
}

// DeviceCatalog lists quantum devices offered by a cloud provider.
type DeviceCatalog interface {
	ListDevices(ctx context.Context) ([]model.Device, error)
}
