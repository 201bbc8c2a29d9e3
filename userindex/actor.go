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

// Package userindex holds the registry of users: usernames, principals and
// suspensions. It owns the lifecycle of the user actors.
package userindex

import (
	"errors"
	"time"

	"github.com/actorchat/actorchat/actor"
	"github.com/actorchat/actorchat/command"
	"github.com/actorchat/actorchat/contract"
	"github.com/actorchat/actorchat/env"
	gerrors "github.com/actorchat/actorchat/errors"
	"github.com/actorchat/actorchat/jobs"
	"github.com/actorchat/actorchat/persistence"
	"github.com/actorchat/actorchat/platform"
	"github.com/actorchat/actorchat/user"
)

// ExpireJobName is the job lifting timed suspensions
const ExpireJobName = "expire-suspensions"

// Actor is the user index
type Actor struct {
	deps *platform.Deps

	state     *State
	bridge    *persistence.Bridge
	processor *command.Processor
	jobs      *jobs.Scheduler
	expireJob jobs.Job
}

var _ actor.Actor = (*Actor)(nil)

// New creates the user index
func New(deps *platform.Deps) *Actor {
	return &Actor{
		deps: deps,
		expireJob: jobs.Job{
			Name:     ExpireJobName,
			Interval: deps.Settings.SuspensionInterval,
			Message:  new(ExpireSuspensions),
		},
	}
}

func (x *Actor) PreStart(ctx *actor.Context) error {
	processor, err := x.deps.Processor()
	if err != nil {
		return err
	}
	x.processor = processor
	x.bridge = x.deps.Bridge(ctx.ActorName(), SchemaVersion, ctx.Logger())

	data, restored, err := platform.Restore(ctx, x.bridge, (*image).restore)
	if err != nil {
		return err
	}

	if !restored {
		data = newData()
	}

	x.state = env.NewRuntimeState(x.deps.Env, data)
	x.respawn(ctx)
	return nil
}

func (x *Actor) Receive(ctx *actor.ReceiveContext) {
	if x.jobs == nil {
		x.jobs = jobs.New(ctx.ActorSystem(), ctx.Self())
	}

	switch msg := ctx.Message().(type) {
	case *actor.PostStart:
		x.postStart(ctx)
	case *RegisterUser:
		command.Execute[contract.UserID, *RegisterUserResponse](x.processor, ctx, &registerUser{state: x.state, deps: x.deps, args: msg})
	case *SuspendUser:
		command.Execute[struct{}, contract.Result](x.processor, ctx, &suspendUser{
			state: x.state, deps: x.deps, jobs: x.jobs, job: x.expireJob, args: msg,
		})
	case *UnsuspendUser:
		command.Execute[struct{}, contract.Result](x.processor, ctx, &unsuspendUser{state: x.state, deps: x.deps, args: msg})
	case *ExpireSuspensions:
		for _, userID := range x.state.Data.expired(x.state.Env.Now()) {
			if err := ctx.Self().Tell(ctx.Context(), ctx.Self(), &expireSuspension{UserID: userID}); err != nil {
				ctx.Logger().Warnf("cannot queue suspension expiry of %s: %v", userID, err)
			}
		}
		ctx.Response(contract.Success.Result())
	case *expireSuspension:
		command.Execute[struct{}, contract.Result](x.processor, ctx, &expire{
			state: x.state, jobs: x.jobs, job: x.expireJob, args: msg,
		})
	case *CurrentUser:
		ctx.Response(x.currentUser(msg))
	case *contract.LookupUser:
		ctx.Response(x.lookupUser(msg))
	default:
		ctx.Unhandled()
	}
}

func (x *Actor) PostStop(ctx *actor.Context) error {
	if x.jobs != nil {
		if err := x.jobs.StopAll(); err != nil {
			ctx.Logger().Warnf("stopping jobs: %v", err)
		}
	}

	if x.state == nil {
		return nil
	}
	return platform.Snapshot(ctx, x.bridge, x.deps.Env, x.state.Data.image())
}

// postStart brings back the actor of every registered user
// respawn brings back every registered user before the index is reachable
func (x *Actor) respawn(ctx *actor.Context) {
	for _, record := range x.state.Data.records() {
		if _, err := user.Spawn(ctx.Context(), ctx.ActorSystem(), x.deps, record.Profile()); err != nil && !errors.Is(err, gerrors.ErrActorAlreadyExists) {
			ctx.Logger().Errorf("cannot spawn user %s: %v", record.UserID, err)
		}
	}
}

func (x *Actor) postStart(ctx *actor.ReceiveContext) {
	if _, err := x.jobs.StartIfRequired(ctx.Context(), x.expireJob, x.state.Data.hasTimedSuspensions()); err != nil {
		ctx.Logger().Errorf("cannot start %s: %v", ExpireJobName, err)
	}
	ctx.Logger().Infof("user index ready with %d users", len(x.state.Data.users))
}

func (x *Actor) currentUser(msg *CurrentUser) *CurrentUserResponse {
	record, ok := x.state.Data.byCaller(msg.Caller)
	if !ok {
		return &CurrentUserResponse{Result: contract.UserNotFound.Result()}
	}

	resp := &CurrentUserResponse{
		Result:    contract.Success.Result(),
		UserID:    record.UserID,
		Username:  record.Username,
		Suspended: isSuspended(record, x.state.Env.Now()),
	}
	if resp.Suspended && record.Suspension.Timed() {
		until := record.Suspension.Since.Add(*record.Suspension.Duration)
		resp.SuspendedUntil = &until
	}
	return resp
}

func (x *Actor) lookupUser(msg *contract.LookupUser) *contract.LookupUserResponse {
	record, ok := x.state.Data.byCaller(msg.Principal)
	if !ok {
		return &contract.LookupUserResponse{Result: contract.UserNotFound.Result()}
	}

	return &contract.LookupUserResponse{
		Result:    contract.Success.Result(),
		UserID:    record.UserID,
		Username:  record.Username,
		Suspended: isSuspended(record, x.state.Env.Now()),
	}
}

func isSuspended(record *Record, now time.Time) bool {
	return record.Suspension != nil && record.Suspension.Active(now)
}
