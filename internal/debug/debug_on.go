//go:build debug

// Package debug provides assertions compiled into "-tags debug" builds only.
// Release builds link debug_off.go instead, where every call below is a
// zero-cost no-op.
package debug

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/golang/glog"
)

func panicf(a ...interface{}) {
	var sb strings.Builder
	sb.WriteString("DEBUG PANIC: ")
	if len(a) > 0 {
		fmt.Fprint(&sb, a...)
	}
	for i := 2; i < 8; i++ {
		_, file, line, ok := runtime.Caller(i)
		if !ok || !strings.Contains(file, "xrdcore") {
			break
		}
		fmt.Fprintf(&sb, " <- %s:%d", filepath.Base(file), line)
	}
	glog.Errorln(sb.String())
	glog.Flush()
	panic(sb.String())
}

func Assert(cond bool, a ...interface{}) {
	if !cond {
		panicf(a...)
	}
}

func Assertf(cond bool, format string, a ...interface{}) {
	if !cond {
		panicf(fmt.Sprintf(format, a...))
	}
}

func AssertNoErr(err error) {
	if err != nil {
		panicf(err)
	}
}

func AssertFunc(f func() bool, a ...interface{}) {
	if !f() {
		panicf(a...)
	}
}

const Enabled = true
