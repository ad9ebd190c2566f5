package driver_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hvlab/guest-harness/internal/driver"
	"github.com/hvlab/guest-harness/internal/models"
	"github.com/hvlab/guest-harness/internal/plan"
	"github.com/hvlab/guest-harness/pkg/jobs"
	"github.com/hvlab/guest-harness/pkg/remote"
)

// fakeClient simulates a guest: ReadFile walks through a scripted sequence
// of state file contents, Start resolves immediately unless the command is
// marked stuck, and all operations are recorded.
type fakeClient struct {
	mu        sync.Mutex
	stateSeq  []string
	readIdx   int
	uploads   []string
	commands  []string
	patterns  []string
	closed    bool
	uploadErr error
	stuck     string // commands containing this substring block until cancelled
}

func (f *fakeClient) Run(ctx context.Context, command string, opts remote.RunOptions) (models.CommandResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, command)
	return models.CommandResult{Command: command}, nil
}

func (f *fakeClient) Start(runner *jobs.Runner, command string, opts remote.RunOptions) *jobs.Handle {
	f.mu.Lock()
	f.commands = append(f.commands, command)
	stuck := f.stuck != "" && strings.Contains(command, f.stuck)
	f.mu.Unlock()

	return runner.Submit(func(ctx context.Context) (any, error) {
		if stuck {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return models.CommandResult{Command: command}, nil
	})
}

func (f *fakeClient) ReadFile(ctx context.Context, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.stateSeq) == 0 {
		return "", errors.New("no such file")
	}
	i := f.readIdx
	if i >= len(f.stateSeq) {
		i = len(f.stateSeq) - 1
	}
	f.readIdx++
	return f.stateSeq[i], nil
}

func (f *fakeClient) Upload(localPath, remotePath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads = append(f.uploads, remotePath)
	return nil
}

func (f *fakeClient) UploadBytes(content []byte, remotePath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, remotePath)
	return nil
}

func (f *fakeClient) DownloadGlob(pattern, destDir string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patterns = append(f.patterns, pattern)
	return nil, nil
}

func (f *fakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

type fakeReporter struct {
	mu      sync.Mutex
	runs    []models.TestRun
	ctxErrs []error
}

func (r *fakeReporter) Report(ctx context.Context, run models.TestRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	r.ctxErrs = append(r.ctxErrs, ctx.Err())
	return nil
}

// countingProvisioner hands out a fixed target and records lifecycle calls.
type countingProvisioner struct {
	mu           sync.Mutex
	target       models.RemoteTarget
	provisionErr error
	provisions   int
	teardowns    int
}

func (p *countingProvisioner) Provision(context.Context) (models.RemoteTarget, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.provisionErr != nil {
		return models.RemoteTarget{}, p.provisionErr
	}
	p.provisions++
	return p.target, nil
}

func (p *countingProvisioner) Teardown(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.teardowns++
	return nil
}

var _ = Describe("Driver", func() {
	var (
		ctx      context.Context
		runner   *jobs.Runner
		client   *fakeClient
		reporter *fakeReporter
		rctx     *driver.RunContext
		target   models.RemoteTarget
	)

	newDriver := func(p driver.Provisioner) *driver.Driver {
		return driver.New(p, func(models.RemoteTarget) driver.Client { return client }, runner, reporter)
	}

	testCase := func(timeout time.Duration) plan.TestCase {
		return plan.TestCase{
			Name:       "kvp-basic",
			Payload:    "testscripts/kvp_basic.sh",
			Timeout:    timeout,
			Interval:   time.Millisecond,
			Iterations: 1,
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		runner = jobs.NewRunner(4)
		client = &fakeClient{}
		reporter = &fakeReporter{}
		target = models.RemoteTarget{Name: "vm-01", Host: "192.0.2.10", Username: "tester", Password: "secret"}
		rctx = driver.NewRunContext(target, GinkgoT().TempDir(), "/home/tester")
	})

	AfterEach(func() {
		runner.Close()
	})

	Describe("RunCase", func() {
		// Given a guest that moves Running -> Completed
		// When the case runs
		// Then the outcome is Completed, logs are collected and the run reported
		It("should complete a passing case end to end", func() {
			client.stateSeq = []string{"TestRunning", "TestCompleted"}

			run := newDriver(driver.NewStaticProvisioner(target)).RunCase(ctx, rctx, testCase(5*time.Second), 1)

			Expect(run.Outcome).To(Equal(models.OutcomeCompleted))
			Expect(run.Outcome.Verdict()).To(Equal("PASS"))
			Expect(run.Target).To(Equal("vm-01"))

			Expect(client.uploads).To(ContainElement("/home/tester/kvp_basic.sh"))
			Expect(client.uploads).To(ContainElement("/home/tester/constants.sh"))
			Expect(client.patterns).To(ContainElement("/home/tester/state.txt"))
			Expect(client.closed).To(BeTrue())

			Expect(reporter.runs).To(HaveLen(1))
			Expect(rctx.Results()).To(HaveLen(1))
			Expect(rctx.Failed()).To(BeFalse())
		})

		It("should report guest-reported failure as Failed", func() {
			client.stateSeq = []string{"TestRunning", "TestFailed"}

			run := newDriver(driver.NewStaticProvisioner(target)).RunCase(ctx, rctx, testCase(5*time.Second), 1)

			Expect(run.Outcome).To(Equal(models.OutcomeFailed))
			Expect(run.Outcome.Verdict()).To(Equal("FAIL"))
			Expect(rctx.Failed()).To(BeTrue())
		})

		It("should report a skipped case as Skipped", func() {
			client.stateSeq = []string{"TestSkipped"}

			run := newDriver(driver.NewStaticProvisioner(target)).RunCase(ctx, rctx, testCase(5*time.Second), 1)

			Expect(run.Outcome).To(Equal(models.OutcomeSkipped))
			Expect(rctx.Failed()).To(BeFalse())
		})

		// Given a state file that never turns terminal
		// When the deadline elapses
		// Then the run aborts but logs and the report still happen
		It("should abort on timeout and still collect and report", func() {
			client.stateSeq = []string{"TestRunning"}

			run := newDriver(driver.NewStaticProvisioner(target)).RunCase(ctx, rctx, testCase(50*time.Millisecond), 1)

			Expect(run.Outcome).To(Equal(models.OutcomeAborted))
			Expect(run.Message).NotTo(BeEmpty())
			Expect(client.patterns).NotTo(BeEmpty())
			Expect(reporter.runs).To(HaveLen(1))
		})

		It("should abort when the state file never appears", func() {
			client.stateSeq = nil // every read errors

			run := newDriver(driver.NewStaticProvisioner(target)).RunCase(ctx, rctx, testCase(50*time.Millisecond), 1)

			Expect(run.Outcome).To(Equal(models.OutcomeAborted))
		})

		// Given an interrupt that cancels the run context mid-poll
		// When the case winds down
		// Then the terminal record is still reported and the guest torn down
		It("should report and tear down after the run context is cancelled", func() {
			client.stateSeq = []string{"TestRunning"}
			p := &countingProvisioner{target: target}

			cctx, cancel := context.WithCancel(ctx)
			cancel()

			run := newDriver(p).RunCase(cctx, rctx, testCase(5*time.Second), 1)

			Expect(run.Outcome).To(Equal(models.OutcomeAborted))
			Expect(p.teardowns).To(Equal(1))
			Expect(reporter.runs).To(HaveLen(1))
			Expect(reporter.ctxErrs).To(HaveLen(1))
			Expect(reporter.ctxErrs[0]).To(BeNil())
		})

		It("should abort when provisioning fails, and still report", func() {
			p := &countingProvisioner{provisionErr: errors.New("quota exceeded")}

			run := newDriver(p).RunCase(ctx, rctx, testCase(time.Second), 1)

			Expect(run.Outcome).To(Equal(models.OutcomeAborted))
			Expect(run.Message).To(ContainSubstring("quota exceeded"))
			Expect(client.commands).To(BeEmpty())
			Expect(reporter.runs).To(HaveLen(1))
			// nothing was provisioned, so there is nothing to tear down
			Expect(p.teardowns).To(BeZero())
		})

		// Given a guest handed out by the provisioner
		// When the case ends, however it ends
		// Then the guest is handed back exactly once
		It("should tear the guest down after a passing case", func() {
			client.stateSeq = []string{"TestRunning", "TestCompleted"}
			p := &countingProvisioner{target: target}

			run := newDriver(p).RunCase(ctx, rctx, testCase(5*time.Second), 1)

			Expect(run.Outcome).To(Equal(models.OutcomeCompleted))
			Expect(p.provisions).To(Equal(1))
			Expect(p.teardowns).To(Equal(1))
		})

		It("should tear the guest down when the case aborts", func() {
			client.uploadErr = errors.New("sftp: permission denied")
			p := &countingProvisioner{target: target}

			run := newDriver(p).RunCase(ctx, rctx, testCase(time.Second), 1)

			Expect(run.Outcome).To(Equal(models.OutcomeAborted))
			Expect(p.teardowns).To(Equal(1))
		})

		It("should abort when staging fails, and still collect logs", func() {
			client.uploadErr = errors.New("sftp: permission denied")

			run := newDriver(driver.NewStaticProvisioner(target)).RunCase(ctx, rctx, testCase(time.Second), 1)

			Expect(run.Outcome).To(Equal(models.OutcomeAborted))
			Expect(client.patterns).NotTo(BeEmpty())
			Expect(client.closed).To(BeTrue())
		})

		// Given a background capture that outlives the shared deadline
		// When the payload itself completes in time
		// Then the overall result is still Aborted
		It("should abort when a background handle never stops before the deadline", func() {
			client.stateSeq = []string{"TestCompleted"}
			client.stuck = "tcpdump"

			tc := testCase(100 * time.Millisecond)
			tc.Background = []string{"tcpdump -i eth0 -w capture.pcap"}

			run := newDriver(driver.NewStaticProvisioner(target)).RunCase(ctx, rctx, tc, 1)

			Expect(run.Outcome).To(Equal(models.OutcomeAborted))
		})

		It("should let both background handles finish within the deadline", func() {
			client.stateSeq = []string{"TestCompleted"}

			tc := testCase(5 * time.Second)
			tc.Background = []string{"xdpdump -i eth0", "xdpdump -i eth1"}

			run := newDriver(driver.NewStaticProvisioner(target)).RunCase(ctx, rctx, tc, 1)

			Expect(run.Outcome).To(Equal(models.OutcomeCompleted))
		})
	})

	Describe("RunPlan", func() {
		It("should run every iteration as an independent case", func() {
			client.stateSeq = []string{"TestCompleted"}

			tc := testCase(5 * time.Second)
			tc.Iterations = 3

			newDriver(driver.NewStaticProvisioner(target)).RunPlan(ctx, rctx, &plan.Plan{Cases: []plan.TestCase{tc}})

			Expect(rctx.Results()).To(HaveLen(3))
			Expect(reporter.runs).To(HaveLen(3))
			for i, run := range rctx.Results() {
				Expect(run.Iteration).To(Equal(i + 1))
				Expect(run.Outcome).To(Equal(models.OutcomeCompleted))
			}
		})

		It("should keep going after a failing case", func() {
			client.stateSeq = []string{"TestFailed"}

			p := &plan.Plan{Cases: []plan.TestCase{testCase(5 * time.Second), testCase(5 * time.Second)}}
			newDriver(driver.NewStaticProvisioner(target)).RunPlan(ctx, rctx, p)

			Expect(rctx.Results()).To(HaveLen(2))
			Expect(rctx.Failed()).To(BeTrue())
		})
	})
})
