//go:build tinygo && cortexm

package platform

import "device/arm"

// resetter requests a reset through the SCB AIRCR register.
type resetter struct{}

func (resetter) SystemReset() { arm.SystemReset() }
