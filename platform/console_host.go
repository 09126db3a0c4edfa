//go:build !tinygo

package platform

import (
	"ctrlloop-go/services/config"
	"ctrlloop-go/x/logx"
)

// ConsoleSink on a host routes records to glog.
func ConsoleSink(config.ConsoleConfig) logx.Sink { return logx.GlogSink{} }
