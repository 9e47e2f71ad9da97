package roundtrip_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestRoundtrip(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Round-trip laws and scenario suite")
}
