package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDevice_Region(t *testing.T) {
	qpu := Device{ARN: "arn:aws:braket:eu-west-2::device/qpu/oqc/Lucy"}
	sim := Device{ARN: "arn:aws:braket:::device/quantum-simulator/amazon/sv1"}

	assert.Equal(t, "eu-west-2", qpu.Region())
	assert.Equal(t, "", sim.Region())
	assert.Equal(t, "", Device{ARN: "not-an-arn"}.Region())
}

func TestDevice_IsOnline(t *testing.T) {
	assert.True(t, Device{Status: DeviceStatusOnline}.IsOnline())
	assert.False(t, Device{Status: DeviceStatusOffline}.IsOnline())
	assert.False(t, Device{Status: DeviceStatusRetired}.IsOnline())
}
