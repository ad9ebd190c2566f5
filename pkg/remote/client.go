// Package remote executes shell commands on guest VMs over SSH and moves
// files between the controller and the guest. Connections are re-established
// transparently: a guest rebooting or resuming from hibernation drops the
// TCP session, and the next operation simply dials again.
package remote

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"

	"github.com/hvlab/guest-harness/internal/models"
	srvErrors "github.com/hvlab/guest-harness/pkg/errors"
)

const (
	defaultDialTimeout    = 10 * time.Second
	defaultDialMaxElapsed = 2 * time.Minute
)

type Client struct {
	target models.RemoteTarget

	mu   sync.Mutex
	conn *ssh.Client
}

func NewClient(target models.RemoteTarget) *Client {
	return &Client{target: target}
}

func (c *Client) Target() models.RemoteTarget {
	return c.target
}

// session returns an SSH session on a live connection, dialing if needed.
// Dialing is retried with exponential backoff: guests are routinely
// unreachable for a while around reboots.
func (c *Client) session() (*ssh.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		sess, err := c.conn.NewSession()
		if err == nil {
			return sess, nil
		}
		// stale connection, drop it and redial
		zap.S().Named("remote").Debugw("dropping stale connection", "target", c.target.Addr(), "error", err)
		c.conn.Close()
		c.conn = nil
	}

	conn, err := c.dial()
	if err != nil {
		return nil, err
	}
	c.conn = conn

	return c.conn.NewSession()
}

func (c *Client) dial() (*ssh.Client, error) {
	auth, err := authMethods(c.target)
	if err != nil {
		return nil, err
	}

	cfg := &ssh.ClientConfig{
		User:            c.target.Username,
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), // throwaway test guests, no known_hosts
		Timeout:         defaultDialTimeout,
	}

	operation := func() (*ssh.Client, error) {
		return ssh.Dial("tcp", c.target.Addr(), cfg)
	}

	conn, err := backoff.Retry(
		context.Background(),
		operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(defaultDialMaxElapsed),
	)
	if err != nil {
		return nil, srvErrors.NewRemoteExecutionError("dial "+c.target.Addr(), -1, "", err)
	}

	zap.S().Named("remote").Debugw("connected", "target", c.target.Addr(), "user", c.target.Username)
	return conn, nil
}

// drop discards the cached connection so the next operation redials.
func (c *Client) drop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func authMethods(target models.RemoteTarget) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if target.PrivateKeyPath != "" {
		key, err := os.ReadFile(target.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read private key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}
	if target.Password != "" {
		methods = append(methods, ssh.Password(target.Password))
	}
	if len(methods) == 0 {
		return nil, fmt.Errorf("target %s has no credentials", target.Addr())
	}

	return methods, nil
}
