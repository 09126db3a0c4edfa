//go:build !tinygo

package logx

import "github.com/golang/glog"

// GlogSink forwards records to glog. Trace maps to V(2) and Debug to V(1),
// so -v controls how chatty the simulator is.
type GlogSink struct{}

func (GlogSink) Emit(lvl Level, msg string, fields []Field) {
	line := string(AppendRecord(nil, msg, fields))
	switch lvl {
	case LevelTrace:
		glog.V(2).Info(line)
	case LevelDebug:
		glog.V(1).Info(line)
	case LevelInfo:
		glog.Info(line)
	case LevelWarn:
		glog.Warning(line)
	default:
		glog.Error(line)
	}
}
