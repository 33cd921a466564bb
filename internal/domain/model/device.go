package model

import "strings"

// DeviceStatus is the availability reported by the cloud provider.
type DeviceStatus string

const (
	DeviceStatusOnline  DeviceStatus = "ONLINE"
	DeviceStatusOffline DeviceStatus = "OFFLINE"
	DeviceStatusRetired DeviceStatus = "RETIRED"
)

// Device describes a quantum device or simulator offered by a cloud provider.
type Device struct {
	ARN      string
	Name     string
	Provider string
	Type     string
	Status   DeviceStatus
}

// Region extracts the region component from the device ARN. Simulators have
// region-less ARNs and return "".
func (d Device) Region() string {
	parts := strings.Split(d.ARN, ":")
	if len(parts) < 4 {
		return ""
	}
	return parts[3]
}

// IsOnline reports whether the device currently accepts tasks.
func (d Device) IsOnline() bool {
	return d.Status == DeviceStatusOnline
}
