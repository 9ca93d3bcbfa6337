package mon

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestMon(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Mon Suite")
}
