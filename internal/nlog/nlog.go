// Package nlog is the logging choke point for every xrdcore package.
// Nothing outside this package calls fmt.Print or the stdlib log package
// directly; everything logs through here so verbosity and sinks stay
// centrally controlled.
package nlog

import (
	"github.com/golang/glog"
)

func Infof(format string, args ...interface{})    { glog.Infof(format, args...) }
func Infoln(args ...interface{})                  { glog.Infoln(args...) }
func Warningf(format string, args ...interface{}) { glog.Warningf(format, args...) }
func Warningln(args ...interface{})               { glog.Warningln(args...) }
func Errorf(format string, args ...interface{})   { glog.Errorf(format, args...) }
func Errorln(args ...interface{})                  { glog.Errorln(args...) }
func Flush()                                       { glog.Flush() }

// V gates verbose logging the way glog.V does, e.g.:
//
//	if nlog.V(4) { nlog.Infof("stall-timer armed: %s", d) }
func V(level glog.Level) bool { return bool(glog.V(level)) }
