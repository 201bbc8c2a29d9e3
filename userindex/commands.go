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

package userindex

import (
	"regexp"

	"github.com/actorchat/actorchat/actor"
	"github.com/actorchat/actorchat/command"
	"github.com/actorchat/actorchat/contract"
	"github.com/actorchat/actorchat/jobs"
	"github.com/actorchat/actorchat/platform"
	"github.com/actorchat/actorchat/user"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{5,15}$`)

type registerUser struct {
	state *State
	deps  *platform.Deps
	args  *RegisterUser
	// set by commit
	record *Record
}

func (c *registerUser) Name() string { return "userindex.register_user" }

func (c *registerUser) validate() contract.Code {
	data := c.state.Data
	switch {
	case !usernamePattern.MatchString(c.args.Username):
		return contract.UsernameInvalid
	case hasCaller(data, c.args.Caller):
		return contract.AlreadyRegistered
	case data.usernameTaken(c.args.Username):
		return contract.UsernameTaken
	}
	return contract.Success
}

func (c *registerUser) Prepare() (contract.UserID, *RegisterUserResponse, bool) {
	if code := c.validate(); code != contract.Success {
		return "", &RegisterUserResponse{Result: code.Result()}, false
	}
	return contract.NewUserID(), nil, true
}

func (c *registerUser) Perform(contract.UserID) (*command.Call, error) { return nil, nil }

func (c *registerUser) Commit(userID contract.UserID, _ any) (*RegisterUserResponse, bool) {
	if code := c.validate(); code != contract.Success {
		return &RegisterUserResponse{Result: code.Result()}, false
	}

	c.record = &Record{
		UserID:     userID,
		Principal:  c.args.Caller,
		Username:   c.args.Username,
		Registered: c.state.Env.Now(),
	}
	if err := c.state.Data.add(c.record); err != nil {
		panic(err)
	}
	return &RegisterUserResponse{Result: contract.Success.Result(), UserID: userID}, true
}

func (c *registerUser) Failed(_ contract.UserID, err error) *RegisterUserResponse {
	return &RegisterUserResponse{Result: contract.Failure(err)}
}

func (c *registerUser) AfterCommit(rctx *actor.ReceiveContext, _ *RegisterUserResponse) {
	if _, err := user.Spawn(rctx.Context(), rctx.ActorSystem(), c.deps, c.record.Profile()); err != nil {
		rctx.Logger().Errorf("cannot spawn user %s: %v", c.record.UserID, err)
	}
}

type suspendUser struct {
	state *State
	deps  *platform.Deps
	jobs  *jobs.Scheduler
	job   jobs.Job
	args  *SuspendUser
}

func (c *suspendUser) Name() string { return "userindex.suspend_user" }

func (c *suspendUser) validate() contract.Code {
	record, ok := c.state.Data.get(c.args.UserID)
	switch {
	case c.args.Caller != c.deps.Settings.ServicePrincipal:
		return contract.NotAuthorized
	case !ok:
		return contract.UserNotFound
	case c.args.Duration != nil && *c.args.Duration <= 0:
		return contract.InvalidRequest
	case isSuspended(record, c.state.Env.Now()):
		return contract.UserAlreadySuspended
	}
	return contract.Success
}

func (c *suspendUser) Prepare() (struct{}, contract.Result, bool) {
	if code := c.validate(); code != contract.Success {
		return struct{}{}, code.Result(), false
	}
	return struct{}{}, contract.Result{}, true
}

func (c *suspendUser) Perform(struct{}) (*command.Call, error) {
	return &command.Call{
		Name:    contract.UserActorName(c.args.UserID),
		Message: &contract.SetSuspended{Suspended: true, Reason: c.args.Reason},
		Check:   command.Expect[*contract.SetSuspendedResponse](),
	}, nil
}

func (c *suspendUser) Commit(struct{}, any) (contract.Result, bool) {
	record := c.state.Data.mustGet(c.args.UserID)
	now := c.state.Env.Now()
	if isSuspended(record, now) {
		return contract.UserAlreadySuspended.Result(), false
	}

	record.Suspension = &Suspension{Since: now, Duration: c.args.Duration, Reason: c.args.Reason}
	return contract.Success.Result(), true
}

func (c *suspendUser) Failed(_ struct{}, err error) contract.Result {
	return contract.Failure(err)
}

func (c *suspendUser) AfterCommit(rctx *actor.ReceiveContext, _ contract.Result) {
	if c.args.Duration == nil {
		return
	}
	if _, err := c.jobs.Start(rctx.Context(), c.job); err != nil {
		rctx.Logger().Warnf("cannot start %s: %v", c.job.Name, err)
	}
}

type unsuspendUser struct {
	state *State
	deps  *platform.Deps
	args  *UnsuspendUser
}

func (c *unsuspendUser) Name() string { return "userindex.unsuspend_user" }

func (c *unsuspendUser) Prepare() (struct{}, contract.Result, bool) {
	record, ok := c.state.Data.get(c.args.UserID)
	switch {
	case c.args.Caller != c.deps.Settings.ServicePrincipal:
		return struct{}{}, contract.NotAuthorized.Result(), false
	case !ok:
		return struct{}{}, contract.UserNotFound.Result(), false
	case record.Suspension == nil:
		return struct{}{}, contract.UserNotSuspended.Result(), false
	}
	return struct{}{}, contract.Result{}, true
}

func (c *unsuspendUser) Perform(struct{}) (*command.Call, error) {
	return &command.Call{
		Name:    contract.UserActorName(c.args.UserID),
		Message: &contract.SetSuspended{Suspended: false},
		Check:   command.Expect[*contract.SetSuspendedResponse](),
	}, nil
}

func (c *unsuspendUser) Commit(struct{}, any) (contract.Result, bool) {
	record := c.state.Data.mustGet(c.args.UserID)
	if record.Suspension == nil {
		return contract.UserNotSuspended.Result(), false
	}
	record.Suspension = nil
	return contract.Success.Result(), true
}

func (c *unsuspendUser) Failed(_ struct{}, err error) contract.Result {
	return contract.Failure(err)
}

// expire lifts a timed suspension that ended, keeping the user actor in step
type expire struct {
	state *State
	jobs  *jobs.Scheduler
	job   jobs.Job
	args  *expireSuspension
}

func (c *expire) Name() string { return "userindex.expire_suspension" }

func (c *expire) ended() bool {
	record, ok := c.state.Data.get(c.args.UserID)
	if !ok || record.Suspension == nil {
		return false
	}
	return record.Suspension.Timed() && !record.Suspension.Active(c.state.Env.Now())
}

func (c *expire) Prepare() (struct{}, contract.Result, bool) {
	if !c.ended() {
		return struct{}{}, contract.NoChange.Result(), false
	}
	return struct{}{}, contract.Result{}, true
}

func (c *expire) Perform(struct{}) (*command.Call, error) {
	return &command.Call{
		Name:    contract.UserActorName(c.args.UserID),
		Message: &contract.SetSuspended{Suspended: false},
		Check:   command.Expect[*contract.SetSuspendedResponse](),
	}, nil
}

func (c *expire) Commit(struct{}, any) (contract.Result, bool) {
	if !c.ended() {
		return contract.NoChange.Result(), false
	}
	c.state.Data.mustGet(c.args.UserID).Suspension = nil
	return contract.Success.Result(), true
}

func (c *expire) Failed(_ struct{}, err error) contract.Result {
	return contract.Failure(err)
}

func (c *expire) AfterCommit(rctx *actor.ReceiveContext, _ contract.Result) {
	if c.state.Data.hasTimedSuspensions() {
		return
	}
	if _, err := c.jobs.Stop(c.job.Name); err != nil {
		rctx.Logger().Warnf("cannot stop %s: %v", c.job.Name, err)
	}
}

func hasCaller(data *Data, principal contract.Principal) bool {
	_, ok := data.byCaller(principal)
	return ok
}
