package remote

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"

	"github.com/hvlab/guest-harness/internal/models"
	srvErrors "github.com/hvlab/guest-harness/pkg/errors"
	"github.com/hvlab/guest-harness/pkg/jobs"
)

// RunOptions control a single remote command invocation.
type RunOptions struct {
	// Elevate prefixes the command with sudo.
	Elevate bool
	// IgnoreExitCode returns the result instead of an error on non-zero exit.
	IgnoreExitCode bool
	// Timeout bounds the command; zero means bounded by ctx only.
	Timeout time.Duration
}

// Run executes command synchronously and returns its captured output.
// A non-zero exit yields a RemoteExecutionError unless IgnoreExitCode is
// set. Commands have real side effects on the guest; idempotency is the
// caller's problem.
func (c *Client) Run(ctx context.Context, command string, opts RunOptions) (models.CommandResult, error) {
	res := models.CommandResult{Command: command}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	sess, err := c.session()
	if err != nil {
		return res, err
	}
	defer sess.Close()

	wire := command
	if opts.Elevate && c.target.Username != "root" {
		wire = elevate(command)
	}

	var stdout, stderr bytes.Buffer
	sess.Stdout = &stdout
	sess.Stderr = &stderr

	zap.S().Named("remote").Debugw("run", "target", c.target.Addr(), "command", command, "elevate", opts.Elevate)

	if err := sess.Start(wire); err != nil {
		c.drop()
		return res, srvErrors.NewRemoteExecutionError(command, -1, "", err)
	}

	waitErr := make(chan error, 1)
	go func() { waitErr <- sess.Wait() }()

	select {
	case <-ctx.Done():
		// best effort, the guest process may outlive the session
		_ = sess.Signal(ssh.SIGKILL)
		c.drop()
		return res, srvErrors.NewRemoteExecutionError(command, -1, "", ctx.Err())
	case err = <-waitErr:
	}

	res.Stdout = stdout.String()
	res.Stderr = stderr.String()

	if err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitStatus()
			if opts.IgnoreExitCode {
				return res, nil
			}
			return res, srvErrors.NewRemoteExecutionError(command, res.ExitCode, res.Stderr, nil)
		}
		c.drop()
		return res, srvErrors.NewRemoteExecutionError(command, -1, res.Stderr, err)
	}

	return res, nil
}

// Start launches command in the background via runner and returns a handle
// whose IsRunning can be polled without blocking. The remote process keeps
// running independent of the handle's lifetime.
func (c *Client) Start(runner *jobs.Runner, command string, opts RunOptions) *jobs.Handle {
	return runner.Submit(func(ctx context.Context) (any, error) {
		res, err := c.Run(ctx, command, opts)
		return res, err
	})
}

// ReadFile returns the content of a small text file on the guest. Used for
// state file polling, so it goes through the shell rather than SFTP: a
// single exec round-trip is cheaper on a connection that may have just been
// re-established.
func (c *Client) ReadFile(ctx context.Context, path string) (string, error) {
	res, err := c.Run(ctx, "cat "+shellQuote(path), RunOptions{})
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}

func elevate(command string) string {
	return "sudo sh -c " + shellQuote(command)
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
