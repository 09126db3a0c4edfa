//go:build tinygo && !cortexm

package platform

// resetter parks the core on targets without a software reset. A watchdog,
// if armed, finishes the job.
type resetter struct{}

func (resetter) SystemReset() {
	for {
	}
}
