package handlerqueue

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestHandlerQueue(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "HandlerQueue Suite")
}
