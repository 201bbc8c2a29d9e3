// MIT License
//
// Copyright (c) 2026 The actorchat Authors
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

package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/actorchat/actorchat/actor"
	gerrors "github.com/actorchat/actorchat/errors"
)

// Job is a named background task. Each tick delivers Message to the owning
// actor, which handles it like any other inbound message.
type Job struct {
	Name     string
	Interval time.Duration
	// Message builds the message delivered on each tick
	Message any
	// Once delivers the message a single time after Interval. The job stays
	// registered until stopped.
	Once bool
}

// Scheduler runs the jobs of a single actor on the actor system scheduler
type Scheduler struct {
	mu      sync.Mutex
	system  actor.ActorSystem
	owner   *actor.PID
	running map[string]struct{}
}

// New creates a Scheduler delivering job messages to owner
func New(system actor.ActorSystem, owner *actor.PID) *Scheduler {
	return &Scheduler{
		system:  system,
		owner:   owner,
		running: make(map[string]struct{}),
	}
}

// Start registers the job. Starting a job that is already running is a no-op
// and reports false.
func (s *Scheduler) Start(ctx context.Context, job Job) (bool, error) {
	if job.Name == "" {
		return false, gerrors.ErrNameRequired
	}

	if job.Interval <= 0 {
		return false, fmt.Errorf("jobs: %s: %w", job.Name, gerrors.ErrInvalidTimeout)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.running[job.Name]; ok {
		return false, nil
	}

	reference := s.reference(job.Name)
	opts := []actor.ScheduleOption{actor.WithReference(reference), actor.WithSender(s.owner)}

	var err error
	if job.Once {
		err = s.system.ScheduleOnce(ctx, job.Message, s.owner, job.Interval, opts...)
	} else {
		err = s.system.Schedule(ctx, job.Message, s.owner, job.Interval, opts...)
	}

	if err != nil && !errors.Is(err, gerrors.ErrScheduledReferenceExists) {
		return false, fmt.Errorf("jobs: starting %s: %w", job.Name, err)
	}

	s.running[job.Name] = struct{}{}
	s.owner.Logger().Debugf("job %s started (every %s)", job.Name, job.Interval)
	return true, nil
}

// StartIfRequired starts the job only when required holds
func (s *Scheduler) StartIfRequired(ctx context.Context, job Job, required bool) (bool, error) {
	if !required {
		return false, nil
	}
	return s.Start(ctx, job)
}

// Stop cancels the named job. Stopping a job that is not running is a no-op
// and reports false.
func (s *Scheduler) Stop(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop(name)
}

// StopAll cancels every running job
func (s *Scheduler) StopAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for name := range s.running {
		if _, err := s.stop(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Running reports whether the named job is running
func (s *Scheduler) Running(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.running[name]
	return ok
}

// Names returns the running job names in order
func (s *Scheduler) Names() []string {
	s.mu.Lock()
	names := make([]string, 0, len(s.running))
	for name := range s.running {
		names = append(names, name)
	}
	s.mu.Unlock()

	sort.Strings(names)
	return names
}

func (s *Scheduler) stop(name string) (bool, error) {
	if _, ok := s.running[name]; !ok {
		return false, nil
	}

	delete(s.running, name)
	err := s.system.CancelSchedule(s.reference(name))
	switch {
	case err == nil,
		// one-shot jobs forget their reference once fired
		errors.Is(err, gerrors.ErrScheduledReferenceNotFound),
		errors.Is(err, gerrors.ErrSchedulerNotStarted):
		s.owner.Logger().Debugf("job %s stopped", name)
		return true, nil
	default:
		return true, fmt.Errorf("jobs: stopping %s: %w", name, err)
	}
}

func (s *Scheduler) reference(name string) string {
	return s.owner.Name() + ":" + name
}
