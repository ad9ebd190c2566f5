package collector_test

import (
	"errors"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hvlab/guest-harness/internal/collector"
)

type fakeTransfer struct {
	files    map[string][]string // pattern -> matched paths
	failWith map[string]error
	requests []string
}

func (f *fakeTransfer) DownloadGlob(pattern, destDir string) ([]string, error) {
	f.requests = append(f.requests, pattern)
	if err, ok := f.failWith[pattern]; ok {
		return nil, err
	}
	return f.files[pattern], nil
}

var _ = Describe("Collect", func() {
	var destDir string

	BeforeEach(func() {
		destDir = filepath.Join(GinkgoT().TempDir(), "logs")
	})

	It("should fetch every matched file", func() {
		t := &fakeTransfer{files: map[string][]string{
			"state.txt": {"/home/tester/state.txt"},
			"*.log":     {"/home/tester/TestExecution.log", "/home/tester/summary.log"},
		}}

		n := collector.Collect(t, []string{"state.txt", "*.log"}, destDir)
		Expect(n).To(Equal(3))
		Expect(t.requests).To(Equal([]string{"state.txt", "*.log"}))
	})

	// Given two patterns matching the same guest file
	// When logs are collected
	// Then the file counts once in the fetched total
	It("should count a file matched by several patterns once", func() {
		t := &fakeTransfer{files: map[string][]string{
			"summary.log": {"/home/tester/summary.log"},
			"*.log":       {"/home/tester/TestExecution.log", "/home/tester/summary.log"},
		}}

		n := collector.Collect(t, []string{"summary.log", "*.log"}, destDir)
		Expect(n).To(Equal(2))
	})

	// Given a pattern that matches nothing on the guest
	// When logs are collected
	// Then the missing files are not an error and the rest still download
	It("should treat missing files as non-fatal", func() {
		t := &fakeTransfer{files: map[string][]string{
			"*.log": {"/home/tester/summary.log"},
		}}

		n := collector.Collect(t, []string{"state.txt", "*.log"}, destDir)
		Expect(n).To(Equal(1))
	})

	It("should keep going when one pattern fails to download", func() {
		t := &fakeTransfer{
			files:    map[string][]string{"*.log": {"/home/tester/summary.log"}},
			failWith: map[string]error{"state.txt": errors.New("connection reset")},
		}

		n := collector.Collect(t, []string{"state.txt", "*.log"}, destDir)
		Expect(n).To(Equal(1))
	})

	It("should create the destination directory", func() {
		t := &fakeTransfer{}

		collector.Collect(t, nil, destDir)
		Expect(destDir).To(BeADirectory())
	})
})
