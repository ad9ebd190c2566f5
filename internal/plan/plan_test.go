package plan_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hvlab/guest-harness/internal/plan"
)

func writePlan(content string) string {
	path := filepath.Join(GinkgoT().TempDir(), "plan.yaml")
	Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
	return path
}

var _ = Describe("Load", func() {
	It("should load cases and apply defaults", func() {
		path := writePlan(`
cases:
  - name: kvp-basic
    payload: testscripts/kvp_basic.sh
    params:
      KVP_POOL: "0"
`)
		p, err := plan.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Cases).To(HaveLen(1))

		tc := p.Cases[0]
		Expect(tc.Name).To(Equal("kvp-basic"))
		Expect(tc.Timeout).To(Equal(10 * time.Minute))
		Expect(tc.Interval).To(Equal(5 * time.Second))
		Expect(tc.Iterations).To(Equal(1))
	})

	It("should honor explicit timing and iterations", func() {
		path := writePlan(`
cases:
  - name: hibernate-stress
    payload: testscripts/hibernate.sh
    timeout: 45m
    interval: 10s
    iterations: 5
    elevate: true
`)
		p, err := plan.Load(path)
		Expect(err).NotTo(HaveOccurred())

		tc := p.Cases[0]
		Expect(tc.Timeout).To(Equal(45 * time.Minute))
		Expect(tc.Interval).To(Equal(10 * time.Second))
		Expect(tc.Iterations).To(Equal(5))
		Expect(tc.Elevate).To(BeTrue())
	})

	It("should reject a case without a payload", func() {
		path := writePlan(`
cases:
  - name: broken
`)
		_, err := plan.Load(path)
		Expect(err).To(HaveOccurred())
	})

	It("should reject an empty plan", func() {
		path := writePlan(`cases: []`)
		_, err := plan.Load(path)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("ConstantsFile", func() {
	It("should render sorted KEY=value lines", func() {
		tc := plan.TestCase{Params: map[string]string{
			"VF_IP2":          "10.0.0.2",
			"DETECTED_DISTRO": "ubuntu",
			"VF_IP1":          "10.0.0.1",
		}}

		Expect(string(tc.ConstantsFile())).To(Equal(
			"DETECTED_DISTRO=ubuntu\nVF_IP1=10.0.0.1\nVF_IP2=10.0.0.2\n"))
	})

	It("should render nothing for an empty parameter set", func() {
		tc := plan.TestCase{}
		Expect(tc.ConstantsFile()).To(BeEmpty())
	})
})
