// Package driver sequences a test case end to end: provision the guest,
// push the payload, launch it, poll the guest state file to a terminal
// outcome, pull logs, report. Transitions are linear and there are no
// retries of the remote action; a stress loop is just more independent
// iterations.
package driver

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hvlab/guest-harness/internal/collector"
	"github.com/hvlab/guest-harness/internal/models"
	"github.com/hvlab/guest-harness/internal/plan"
	"github.com/hvlab/guest-harness/internal/poller"
	"github.com/hvlab/guest-harness/pkg/jobs"
	"github.com/hvlab/guest-harness/pkg/remote"
)

// State tracks where a run is in its lifecycle. Purely informational; the
// driver never branches on it except to move forward.
type State string

const (
	StateNotStarted    State = "not-started"
	StateProvisioning  State = "provisioning"
	StateRunning       State = "running"
	StateLogsCollected State = "logs-collected"
	StateReported      State = "reported"
)

const stateFileName = "state.txt"

// Client is the slice of the remote client the driver drives a guest with.
// *remote.Client satisfies it; tests substitute fakes.
type Client interface {
	Run(ctx context.Context, command string, opts remote.RunOptions) (models.CommandResult, error)
	Start(runner *jobs.Runner, command string, opts remote.RunOptions) *jobs.Handle
	ReadFile(ctx context.Context, path string) (string, error)
	Upload(localPath, remotePath string) error
	UploadBytes(content []byte, remotePath string) error
	DownloadGlob(pattern, destDir string) ([]string, error)
	Close() error
}

// Reporter receives the final record of every run exactly once.
type Reporter interface {
	Report(ctx context.Context, run models.TestRun) error
}

type Driver struct {
	provisioner Provisioner
	newClient   func(models.RemoteTarget) Client
	runner      *jobs.Runner
	reporter    Reporter
}

func New(provisioner Provisioner, newClient func(models.RemoteTarget) Client, runner *jobs.Runner, reporter Reporter) *Driver {
	return &Driver{
		provisioner: provisioner,
		newClient:   newClient,
		runner:      runner,
		reporter:    reporter,
	}
}

// RunPlan executes every case in the plan, iterations included, recording
// each run into rctx. A failing case never stops the plan; cases are
// independent by design.
func (d *Driver) RunPlan(ctx context.Context, rctx *RunContext, p *plan.Plan) {
	for _, tc := range p.Cases {
		for i := 1; i <= tc.Iterations; i++ {
			run := d.RunCase(ctx, rctx, tc, i)
			zap.S().Named("driver").Infow("case finished",
				"test", tc.Name, "iteration", i, "verdict", run.Outcome.Verdict())
		}
	}
}

// RunCase drives a single iteration of a test case through the full state
// machine. Every error on the way folds into an Aborted outcome at this
// boundary; only a guest-reported TestFailed becomes Failed. Log
// collection and reporting run no matter which path was taken, and a
// guest that was provisioned is always torn down.
func (d *Driver) RunCase(ctx context.Context, rctx *RunContext, tc plan.TestCase, iteration int) (run models.TestRun) {
	log := zap.S().Named("driver")

	run = models.TestRun{
		ID:        uuid.New(),
		TestName:  tc.Name,
		Iteration: iteration,
		StartedAt: time.Now(),
	}
	run.LogDir = filepath.Join(rctx.LogDir, fmt.Sprintf("%s-%d", tc.Name, iteration))

	state := StateNotStarted
	var client Client
	provisioned := false

	defer func() {
		run.FinishedAt = time.Now()
		if client != nil {
			patterns := remotePatterns(rctx.RemoteWorkDir, append(collector.DefaultPatterns, tc.LogPatterns...))
			collector.Collect(client, patterns, run.LogDir)
			client.Close()
		}
		state = transition(tc.Name, state, StateLogsCollected)

		// ctx may already be cancelled (SIGINT mid-run); teardown and the
		// terminal record must still happen, so they get a detached context
		tail := context.Background()

		if provisioned {
			if err := d.provisioner.Teardown(tail); err != nil {
				log.Warnw("teardown failed", "test", tc.Name, "error", err)
			}
		}

		if d.reporter != nil {
			if err := d.reporter.Report(tail, run); err != nil {
				log.Errorw("failed to report run", "test", tc.Name, "error", err)
			}
		}
		transition(tc.Name, state, StateReported)
		rctx.record(run)
	}()

	state = transition(tc.Name, state, StateProvisioning)
	log.Infow("provisioning", "test", tc.Name, "iteration", iteration)

	target, err := d.provisioner.Provision(ctx)
	if err != nil {
		run.Outcome = models.OutcomeAborted
		run.Message = err.Error()
		log.Errorw("provisioning failed", "test", tc.Name, "error", err)
		return run
	}
	provisioned = true
	run.Target = target.Name
	if run.Target == "" {
		run.Target = target.Host
	}
	client = d.newClient(target)

	if err := d.stage(ctx, client, rctx.RemoteWorkDir, tc); err != nil {
		run.Outcome = models.OutcomeAborted
		run.Message = err.Error()
		log.Errorw("staging failed", "test", tc.Name, "error", err)
		return run
	}

	state = transition(tc.Name, state, StateRunning)
	outcome, message := d.execute(ctx, client, rctx.RemoteWorkDir, tc)
	run.Outcome = outcome
	run.Message = message

	return run
}

func transition(test string, from, to State) State {
	zap.S().Named("driver").Debugw("transition", "test", test, "from", from, "to", to)
	return to
}

// stage uploads the payload and its constants file and clears any stale
// state file from a previous run.
func (d *Driver) stage(ctx context.Context, client Client, workDir string, tc plan.TestCase) error {
	script := filepath.Base(tc.Payload)

	if err := client.Upload(tc.Payload, path.Join(workDir, script)); err != nil {
		return err
	}
	if err := client.UploadBytes(tc.ConstantsFile(), path.Join(workDir, "constants.sh")); err != nil {
		return err
	}

	cmd := fmt.Sprintf("cd %s && chmod +x %s && rm -f %s", workDir, script, stateFileName)
	if _, err := client.Run(ctx, cmd, remote.RunOptions{}); err != nil {
		return err
	}
	return nil
}

// execute launches the payload (and any auxiliary background commands) and
// polls the state file to a terminal outcome. The shared deadline covers
// the whole run: if any background handle is still running when it passes,
// the result is Aborted even when the state file already read Completed.
func (d *Driver) execute(ctx context.Context, client Client, workDir string, tc plan.TestCase) (models.TestOutcome, string) {
	log := zap.S().Named("driver")
	session := poller.NewSession(tc.Interval, tc.Timeout)

	handles := make([]*jobs.Handle, 0, len(tc.Background)+1)
	for _, cmd := range tc.Background {
		handles = append(handles, client.Start(d.runner, cmd, remote.RunOptions{Elevate: tc.Elevate}))
	}

	script := filepath.Base(tc.Payload)
	payloadCmd := fmt.Sprintf("cd %s && ./%s > TestExecution.log 2>&1", workDir, script)
	handles = append(handles, client.Start(d.runner, payloadCmd, remote.RunOptions{
		Elevate:        tc.Elevate,
		IgnoreExitCode: true, // the state file is the authority, not the exit status
	}))

	statePath := path.Join(workDir, stateFileName)
	read := func(ctx context.Context) (string, error) {
		return client.ReadFile(ctx, statePath)
	}

	outcome, err := session.AwaitTerminal(ctx, read)
	if err != nil {
		log.Warnw("poll ended without terminal state", "test", tc.Name, "error", err)
		stopAll(handles)
		return models.OutcomeAborted, err.Error()
	}

	// same session, same deadline: the remaining budget bounds the
	// background handles too
	if err := session.AwaitHandles(ctx, handles); err != nil {
		log.Warnw("background commands outlived the deadline", "test", tc.Name, "error", err)
		stopAll(handles)
		return models.OutcomeAborted, err.Error()
	}

	return outcome, ""
}

// stopAll cancels the controller side of every handle. The guest processes
// themselves are left to their fate; after a timeout the controller only
// stops watching.
func stopAll(handles []*jobs.Handle) {
	for _, h := range handles {
		h.Stop()
	}
}

// remotePatterns anchors relative patterns at the guest working directory.
func remotePatterns(workDir string, patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if !path.IsAbs(p) {
			p = path.Join(workDir, p)
		}
		out = append(out, p)
	}
	return out
}
