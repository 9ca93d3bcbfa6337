//go:build !debug

package debug

func Assert(bool, ...interface{})              {}
func Assertf(bool, string, ...interface{})     {}
func AssertNoErr(error)                        {}
func AssertFunc(func() bool, ...interface{})   {}

const Enabled = false
