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
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reugn/go-quartz/job"
	quartzlogger "github.com/reugn/go-quartz/logger"
	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/atomic"

	gerrors "github.com/actorchat/actorchat/errors"
	"github.com/actorchat/actorchat/log"
)

// scheduler delivers messages to actors in the future
type scheduler struct {
	mu              sync.Mutex
	quartzScheduler quartz.Scheduler
	started         *atomic.Bool
	logger          log.Logger
	stopTimeout     time.Duration
	references      map[string]struct{}
}

func newScheduler(logger log.Logger, stopTimeout time.Duration) *scheduler {
	// create an instance of quartz scheduler with logger off
	quartzScheduler, _ := quartz.NewStdScheduler(quartz.WithLogger(quartzlogger.NewSimpleLogger(nil, quartzlogger.LevelOff)))
	return &scheduler{
		quartzScheduler: quartzScheduler,
		started:         atomic.NewBool(false),
		logger:          logger,
		stopTimeout:     stopTimeout,
		references:      make(map[string]struct{}),
	}
}

// Start starts the scheduler
func (x *scheduler) Start(ctx context.Context) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.logger.Debug("starting messages scheduler...")
	x.quartzScheduler.Start(ctx)
	x.started.Store(x.quartzScheduler.IsStarted())
}

// Stop stops the scheduler and drops every schedule
func (x *scheduler) Stop(ctx context.Context) {
	if !x.started.Load() {
		return
	}

	x.mu.Lock()
	x.logger.Debug("stopping messages scheduler...")
	_ = x.quartzScheduler.Clear()
	x.quartzScheduler.Stop()
	x.started.Store(x.quartzScheduler.IsStarted())
	x.references = make(map[string]struct{})
	x.mu.Unlock()

	// running jobs may need the lock to finish
	ctx, cancel := context.WithTimeout(ctx, x.stopTimeout)
	defer cancel()
	x.quartzScheduler.Wait(ctx)
}

// ScheduleOnce delivers message to pid once after delay
func (x *scheduler) ScheduleOnce(message any, pid *PID, delay time.Duration, opts ...ScheduleOption) error {
	return x.schedule(message, pid, quartz.NewRunOnceTrigger(delay), true, opts...)
}

// Schedule delivers message to pid every interval
func (x *scheduler) Schedule(message any, pid *PID, interval time.Duration, opts ...ScheduleOption) error {
	return x.schedule(message, pid, quartz.NewSimpleTrigger(interval), false, opts...)
}

// Cancel removes a schedule by reference
func (x *scheduler) Cancel(reference string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if !x.started.Load() {
		return gerrors.ErrSchedulerNotStarted
	}

	if _, ok := x.references[reference]; !ok {
		return gerrors.ErrScheduledReferenceNotFound
	}

	delete(x.references, reference)
	return x.quartzScheduler.DeleteJob(quartz.NewJobKey(reference))
}

func (x *scheduler) schedule(message any, pid *PID, trigger quartz.Trigger, once bool, opts ...ScheduleOption) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if !x.started.Load() {
		return gerrors.ErrSchedulerNotStarted
	}

	if message == nil {
		return gerrors.ErrInvalidMessage
	}

	config := newScheduleConfig(opts...)
	reference := config.reference
	if reference == "" {
		reference = uuid.NewString()
	}

	if _, ok := x.references[reference]; ok {
		return gerrors.ErrScheduledReferenceExists
	}

	sender := config.sender
	functionJob := job.NewFunctionJob[bool](
		func(ctx context.Context) (bool, error) {
			if once {
				x.forget(reference)
			}

			var err error
			if sender != nil {
				err = sender.Tell(ctx, pid, message)
			} else {
				err = Tell(ctx, pid, message)
			}
			return err == nil, err
		},
	)

	detail := quartz.NewJobDetail(functionJob, quartz.NewJobKey(reference))
	if err := x.quartzScheduler.ScheduleJob(detail, trigger); err != nil {
		return err
	}

	x.references[reference] = struct{}{}
	return nil
}

func (x *scheduler) forget(reference string) {
	x.mu.Lock()
	delete(x.references, reference)
	x.mu.Unlock()
}
