// Package nsworker supervises one external worker process per network
// namespace: spawning it, tracking its pid and RPC client in a shared
// map, probing it for readiness, and terminating it on teardown.
package nsworker

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/eclipse-fog05/fog05-net-linux/internal/vnerr"
)

const readinessPollInterval = 100 * time.Microsecond

type entry struct {
	pid    int
	client Client
}

// Supervisor owns the process-wide ns_id → (pid, client) map.
type Supervisor struct {
	mu         sync.RWMutex
	entries    map[uuid.UUID]entry
	workerPath string
	dial       Dialer
	logger     *slog.Logger
}

// New returns a Supervisor that launches workerPath and dials workers with
// dial (NetRPCDial if nil).
func New(workerPath string, dial Dialer, logger *slog.Logger) *Supervisor {
	if dial == nil {
		dial = NetRPCDial
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		entries:    make(map[uuid.UUID]entry),
		workerPath: workerPath,
		dial:       dial,
		logger:     logger,
	}
}

// Spawn launches the worker binary for namespace nsName/nsID bound to
// locator and inserts its entry into the shared map. It does not wait for
// the worker to become ready: per spec §4.5's construct template, spawn
// happens at s3 while the readiness wait is a separate, later step (s5,
// after the veth pair has been moved into the namespace) — callers use
// WaitReady for that.
func (s *Supervisor) Spawn(ctx context.Context, nsName string, nsID uuid.UUID, locator string) error {
	cmd := exec.Command(s.workerPath,
		"--netns", nsName,
		"--id", nsID.String(),
		"--locator", locator,
	)
	if err := cmd.Start(); err != nil {
		return vnerr.Wrap(vnerr.NetworkingError, "spawn namespace worker", err)
	}

	client, err := s.dial(ctx, nsID, locator)
	if err != nil {
		_ = cmd.Process.Kill()
		return err
	}

	s.mu.Lock()
	s.entries[nsID] = entry{pid: cmd.Process.Pid, client: client}
	s.mu.Unlock()

	s.logger.Info("spawned namespace worker",
		slog.String("namespace", nsName),
		slog.String("id", nsID.String()),
		slog.Int("pid", cmd.Process.Pid),
	)

	return nil
}

// WaitReady blocks until nsID's worker reports ready via VerifyServer, or
// ctx is canceled. Callers that want the spec's literal "no timeout"
// behavior pass context.Background().
func (s *Supervisor) WaitReady(ctx context.Context, nsID uuid.UUID) error {
	client, err := s.Get(nsID)
	if err != nil {
		return err
	}
	return waitReady(ctx, client)
}

// waitReady polls client.VerifyServer until it reports ready or ctx is
// canceled. The poll period is short (order 100µs) per spec §4.3.
func waitReady(ctx context.Context, client Client) error {
	ticker := time.NewTicker(readinessPollInterval)
	defer ticker.Stop()
	for {
		ready, err := client.VerifyServer(ctx)
		if err == nil && ready {
			return nil
		}
		select {
		case <-ctx.Done():
			return vnerr.Wrap(vnerr.NetworkingError, "canceled waiting for worker readiness", ctx.Err())
		case <-ticker.C:
		}
	}
}

// Get returns the client bound to nsID, or NotFound.
func (s *Supervisor) Get(nsID uuid.UUID) (Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[nsID]
	if !ok {
		return nil, vnerr.New(vnerr.NotFound, fmt.Sprintf("namespace worker %s", nsID))
	}
	return e.client, nil
}

// Remove erases nsID's entry and returns its pid and client.
func (s *Supervisor) Remove(nsID uuid.UUID) (int, Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[nsID]
	if !ok {
		return 0, nil, vnerr.New(vnerr.NotFound, fmt.Sprintf("namespace worker %s", nsID))
	}
	delete(s.entries, nsID)
	return e.pid, e.client, nil
}

// Kill removes nsID's entry and sends SIGTERM to its worker process.
func (s *Supervisor) Kill(nsID uuid.UUID) error {
	pid, client, err := s.Remove(nsID)
	if err != nil {
		return err
	}
	if client != nil {
		_ = client.Close()
	}
	if err := unix.Kill(pid, unix.SIGTERM); err != nil {
		return vnerr.Wrap(vnerr.NetworkingError, fmt.Sprintf("signal worker pid %d", pid), err)
	}
	s.logger.Info("killed namespace worker", slog.String("namespace", nsID.String()), slog.Int("pid", pid))
	return nil
}
