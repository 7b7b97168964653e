package sim_test

import (
	"testing"

	g "github.com/onsi/ginkgo/v2"
	o "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
)

func TestSim(t *testing.T) {
	logrus.SetLevel(logrus.WarnLevel)
	o.RegisterFailHandler(g.Fail)
	g.RunSpecs(t, "Sim Suite")
}
