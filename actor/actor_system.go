// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package actor

import (
	"context"
	"regexp"
	"sort"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	gerrors "github.com/actorchat/actorchat/errors"
	"github.com/actorchat/actorchat/log"
)

const (
	// DefaultShutdownTimeout bounds the time Stop waits for actors to terminate
	DefaultShutdownTimeout = 30 * time.Second
	// DefaultInitMaxRetries is the number of PreStart attempts
	DefaultInitMaxRetries = 5
	// DefaultInitTimeout bounds the time an actor may take to initialize
	DefaultInitTimeout = time.Second
	// DefaultRequestTimeout bounds async requests that set no timeout
	DefaultRequestTimeout = 10 * time.Second
)

var systemNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// ActorSystem hosts actors and routes messages between them.
type ActorSystem interface {
	// Name returns the actor system name
	Name() string
	// Start starts the actor system
	Start(ctx context.Context) error
	// Stop stops every actor then the scheduler
	Stop(ctx context.Context) error
	// Running reports whether the actor system is started
	Running() bool
	// Spawn creates and starts an actor. PreStart runs before Spawn returns.
	Spawn(ctx context.Context, name string, actor Actor, opts ...SpawnOption) (*PID, error)
	// ActorOf returns the PID of a running actor
	ActorOf(ctx context.Context, name string) (*PID, error)
	// Actors returns the running actors sorted by name
	Actors() []*PID
	// Kill stops the named actor
	Kill(ctx context.Context, name string) error
	// Logger returns the actor system logger
	Logger() log.Logger
	// ScheduleOnce delivers message to pid once after delay
	ScheduleOnce(ctx context.Context, message any, pid *PID, delay time.Duration, opts ...ScheduleOption) error
	// Schedule delivers message to pid every interval
	Schedule(ctx context.Context, message any, pid *PID, interval time.Duration, opts ...ScheduleOption) error
	// CancelSchedule cancels a schedule created with WithReference
	CancelSchedule(reference string) error
}

type actorSystem struct {
	name   string
	logger log.Logger

	shutdownTimeout     time.Duration
	actorInitMaxRetries int
	actorInitTimeout    time.Duration
	requestTimeout      time.Duration

	started   atomic.Bool
	scheduler *scheduler

	mu       sync.RWMutex
	actors   map[string]*PID
	reserved map[string]struct{}
}

var _ ActorSystem = (*actorSystem)(nil)

// NewActorSystem creates an actor system. Call Start before spawning actors.
func NewActorSystem(name string, opts ...Option) (ActorSystem, error) {
	if name == "" {
		return nil, gerrors.ErrNameRequired
	}

	if !systemNameRegex.MatchString(name) {
		return nil, gerrors.ErrInvalidActorSystemName
	}

	system := &actorSystem{
		name:                name,
		logger:              log.DefaultLogger,
		shutdownTimeout:     DefaultShutdownTimeout,
		actorInitMaxRetries: DefaultInitMaxRetries,
		actorInitTimeout:    DefaultInitTimeout,
		requestTimeout:      DefaultRequestTimeout,
		actors:              make(map[string]*PID),
		reserved:            make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt.Apply(system)
	}

	system.logger = system.logger.With("system", name)
	system.scheduler = newScheduler(system.logger, system.shutdownTimeout)
	return system, nil
}

func (x *actorSystem) Name() string {
	return x.name
}

func (x *actorSystem) Logger() log.Logger {
	return x.logger
}

func (x *actorSystem) Running() bool {
	return x.started.Load()
}

func (x *actorSystem) Start(ctx context.Context) error {
	if !x.started.CompareAndSwap(false, true) {
		return nil
	}

	x.scheduler.Start(ctx)
	x.logger.Infof("actor system %s started", x.name)
	return nil
}

// Stop shuts every actor down in parallel and gathers their errors
func (x *actorSystem) Stop(ctx context.Context) error {
	if !x.started.Load() {
		return gerrors.ErrActorSystemNotStarted
	}

	x.logger.Infof("stopping actor system %s...", x.name)
	x.scheduler.Stop(ctx)

	ctx, cancel := context.WithTimeout(ctx, x.shutdownTimeout)
	defer cancel()

	var (
		mu  sync.Mutex
		err error
	)

	eg, egCtx := errgroup.WithContext(ctx)
	for _, pid := range x.Actors() {
		eg.Go(func() error {
			if e := pid.Shutdown(egCtx); e != nil {
				mu.Lock()
				err = multierr.Append(err, e)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = eg.Wait()

	x.started.Store(false)
	if err != nil {
		x.logger.Errorf("actor system %s stopped with errors: %v", x.name, err)
		return err
	}

	x.logger.Infof("actor system %s stopped", x.name)
	return nil
}

func (x *actorSystem) Spawn(ctx context.Context, name string, actor Actor, opts ...SpawnOption) (*PID, error) {
	if !x.started.Load() {
		return nil, gerrors.ErrActorSystemNotStarted
	}

	if name == "" {
		return nil, gerrors.ErrNameRequired
	}

	if actor == nil {
		return nil, gerrors.ErrInvalidMessage
	}

	if !x.reserve(name) {
		return nil, gerrors.NewErrActorAlreadyExists(name)
	}

	pid := newPID(name, actor, x, newSpawnConfig(opts...))
	if err := pid.init(ctx); err != nil {
		x.release(name, nil)
		return nil, err
	}

	x.release(name, pid)
	pid.doReceive(newReceiveContext(ctx, new(PostStart), nil, pid))
	return pid, nil
}

func (x *actorSystem) ActorOf(_ context.Context, name string) (*PID, error) {
	if !x.started.Load() {
		return nil, gerrors.ErrActorSystemNotStarted
	}

	x.mu.RLock()
	pid, ok := x.actors[name]
	x.mu.RUnlock()

	if !ok || !pid.IsRunning() {
		return nil, gerrors.NewErrActorNotFound(name)
	}
	return pid, nil
}

func (x *actorSystem) Actors() []*PID {
	x.mu.RLock()
	pids := make([]*PID, 0, len(x.actors))
	for _, pid := range x.actors {
		if pid.IsRunning() {
			pids = append(pids, pid)
		}
	}
	x.mu.RUnlock()

	sort.Slice(pids, func(i, j int) bool {
		return pids[i].Name() < pids[j].Name()
	})
	return pids
}

func (x *actorSystem) Kill(ctx context.Context, name string) error {
	pid, err := x.ActorOf(ctx, name)
	if err != nil {
		return err
	}
	return pid.Shutdown(ctx)
}

func (x *actorSystem) ScheduleOnce(_ context.Context, message any, pid *PID, delay time.Duration, opts ...ScheduleOption) error {
	return x.scheduler.ScheduleOnce(message, pid, delay, opts...)
}

func (x *actorSystem) Schedule(_ context.Context, message any, pid *PID, interval time.Duration, opts ...ScheduleOption) error {
	return x.scheduler.Schedule(message, pid, interval, opts...)
}

func (x *actorSystem) CancelSchedule(reference string) error {
	return x.scheduler.Cancel(reference)
}

// reserve claims name for an actor under initialization
func (x *actorSystem) reserve(name string) bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	if pid, ok := x.actors[name]; ok && pid.IsRunning() {
		return false
	}

	if _, ok := x.reserved[name]; ok {
		return false
	}

	x.reserved[name] = struct{}{}
	return true
}

// release drops the reservation and registers pid when initialization succeeded
func (x *actorSystem) release(name string, pid *PID) {
	x.mu.Lock()
	defer x.mu.Unlock()

	delete(x.reserved, name)
	if pid != nil {
		x.actors[name] = pid
	}
}

// remove unregisters a stopping actor
func (x *actorSystem) remove(pid *PID) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if current, ok := x.actors[pid.Name()]; ok && current.Equals(pid) {
		delete(x.actors, pid.Name())
	}
}
