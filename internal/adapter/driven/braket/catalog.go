package braket

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	awsbraket "github.com/aws/aws-sdk-go/service/braket"
	"github.com/aws/aws-sdk-go/service/braket/braketiface"

	"github.com/ericfisherdev/quantumvault/internal/domain/model"
	"github.com/ericfisherdev/quantumvault/internal/domain/port/driven"
)

var _ driven.DeviceCatalog = (*Catalog)(nil)

// Catalog lists Braket devices visible to the caller's account and region.
type Catalog struct {
	braket braketiface.BraketAPI
}

// NewCatalog creates a Catalog.
func NewCatalog(bk braketiface.BraketAPI) *Catalog {
	return &Catalog{braket: bk}
}

// ListDevices returns every device, following pagination.
func (c *Catalog) ListDevices(ctx context.Context) ([]model.Device, error) {
	input := &awsbraket.SearchDevicesInput{
		Filters: []*awsbraket.SearchDevicesFilter{},
	}

	devices := []model.Device{}
	for {
		out, err := c.braket.SearchDevicesWithContext(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("search devices: %w", err)
		}
		for _, d := range out.Devices {
			devices = append(devices, mapDevice(d))
		}
		if aws.StringValue(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	return devices, nil
}

func mapDevice(d *awsbraket.DeviceSummary) model.Device {
	return model.Device{
		ARN:      aws.StringValue(d.DeviceArn),
		Name:     aws.StringValue(d.DeviceName),
		Provider: aws.StringValue(d.ProviderName),
		Type:     aws.StringValue(d.DeviceType),
		Status:   model.DeviceStatus(aws.StringValue(d.DeviceStatus)),
	}
}
