package driver

import (
	"context"

	"github.com/hvlab/guest-harness/internal/models"
)

// Provisioner prepares a guest VM for a run and tears it down afterwards.
// Cloud and hypervisor lifecycle APIs live behind this interface; the
// harness itself never talks to them directly.
type Provisioner interface {
	Provision(ctx context.Context) (models.RemoteTarget, error)
	Teardown(ctx context.Context) error
}

// StaticProvisioner hands out an already-running guest. This is the common
// case when the VM fleet is managed outside the harness.
type StaticProvisioner struct {
	target models.RemoteTarget
}

func NewStaticProvisioner(target models.RemoteTarget) *StaticProvisioner {
	return &StaticProvisioner{target: target}
}

func (p *StaticProvisioner) Provision(_ context.Context) (models.RemoteTarget, error) {
	return p.target, nil
}

func (p *StaticProvisioner) Teardown(_ context.Context) error {
	return nil
}
