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

package user

import (
	"context"
	"slices"

	"github.com/actorchat/actorchat/actor"
	"github.com/actorchat/actorchat/command"
	"github.com/actorchat/actorchat/contract"
	"github.com/actorchat/actorchat/env"
	"github.com/actorchat/actorchat/eventlog"
	"github.com/actorchat/actorchat/jobs"
	"github.com/actorchat/actorchat/persistence"
	"github.com/actorchat/actorchat/platform"
)

// RetryJobName is the job retrying pending direct message deliveries
const RetryJobName = "retry-failed-messages"

// Actor owns the state of one user: its direct chats, the groups it belongs
// to and the messages it still has to deliver.
type Actor struct {
	deps    *platform.Deps
	profile contract.UserProfile

	state     *State
	bridge    *persistence.Bridge
	processor *command.Processor
	jobs      *jobs.Scheduler
	retry     jobs.Job
}

var _ actor.Actor = (*Actor)(nil)

// New creates the actor of the user described by profile
func New(deps *platform.Deps, profile contract.UserProfile) *Actor {
	return &Actor{
		deps:    deps,
		profile: profile,
		retry: jobs.Job{
			Name:     RetryJobName,
			Interval: deps.Settings.RetryInterval,
			Message:  new(contract.RetrySendingFailedMessages),
		},
	}
}

// Spawn starts the actor of the user described by profile
func Spawn(ctx context.Context, system actor.ActorSystem, deps *platform.Deps, profile contract.UserProfile) (*actor.PID, error) {
	return system.Spawn(ctx, contract.UserActorName(profile.UserID), New(deps, profile), deps.SpawnOptions()...)
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
		data = newData(x.profile)
	}

	x.state = env.NewRuntimeState(x.deps.Env, data)
	return nil
}

func (x *Actor) Receive(ctx *actor.ReceiveContext) {
	if x.jobs == nil {
		x.jobs = jobs.New(ctx.ActorSystem(), ctx.Self())
	}

	switch msg := ctx.Message().(type) {
	case *actor.PostStart:
		if _, err := x.jobs.StartIfRequired(ctx.Context(), x.retry, len(x.state.Data.Pending) > 0); err != nil {
			ctx.Logger().Errorf("cannot start %s: %v", RetryJobName, err)
		}
	case *SendDirectMessage:
		command.Execute[struct{}, *SendDirectMessageResponse](x.processor, ctx, &sendDirectMessage{
			state: x.state, jobs: x.jobs, retry: x.retry, args: msg,
		})
	case *DeliverPending:
		command.Execute[deliverIntent, *DeliverPendingResponse](x.processor, ctx, &deliverPending{
			state: x.state, jobs: x.jobs, retry: x.retry, args: msg,
		})
	case *contract.RetrySendingFailedMessages:
		x.retryPending(ctx, msg)
	case *contract.ReceiveDirectMessages:
		command.Execute[struct{}, *contract.ReceiveDirectMessagesResponse](x.processor, ctx, &receiveDirectMessages{state: x.state, args: msg})
	case *contract.RemoveFromGroup:
		command.Execute[struct{}, *contract.RemoveFromGroupResponse](x.processor, ctx, &removeFromGroup{state: x.state, args: msg})
	case *contract.JoinedGroup:
		command.Execute[struct{}, *contract.JoinedGroupResponse](x.processor, ctx, &joinedGroup{state: x.state, args: msg})
	case *JoinGroup:
		command.Execute[struct{}, *contract.JoinGroupResponse](x.processor, ctx, &joinGroup{state: x.state, args: msg})
	case *contract.SetSuspended:
		command.Execute[struct{}, *contract.SetSuspendedResponse](x.processor, ctx, &setSuspended{state: x.state, args: msg})
	case *BlockUser:
		command.Execute[struct{}, contract.Result](x.processor, ctx, &blockUser{state: x.state, args: msg})
	case *UnblockUser:
		command.Execute[struct{}, contract.Result](x.processor, ctx, &unblockUser{state: x.state, args: msg})
	case *DirectEvents:
		ctx.Response(x.directEvents(msg))
	case *Summary:
		ctx.Response(x.summary(msg))
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

// retryPending queues a delivery per recipient with pending messages
func (x *Actor) retryPending(ctx *actor.ReceiveContext, msg *contract.RetrySendingFailedMessages) {
	recipients := x.state.Data.pendingRecipients()
	if msg.Recipient != "" {
		recipients = slices.DeleteFunc(recipients, func(id contract.UserID) bool { return id != msg.Recipient })
	}

	for _, recipient := range recipients {
		tellSelf(ctx, &DeliverPending{Recipient: recipient})
	}
	ctx.Response(&contract.RetrySendingFailedMessagesResponse{Result: contract.Success.Result()})
}

func (x *Actor) directEvents(msg *DirectEvents) *DirectEventsResponse {
	data := x.state.Data
	if msg.Caller != data.Profile.Principal {
		return &DirectEventsResponse{Result: contract.NotAuthorized.Result()}
	}

	conversation, ok := data.chat(msg.With)
	if !ok {
		return &DirectEventsResponse{Result: contract.ChatNotFound.Result()}
	}

	page := conversation.events.Range(eventlog.RangeOptions{
		Start:     msg.Start,
		Ascending: msg.Ascending,
		MaxEvents: msg.MaxEvents,
	}, nil)

	return &DirectEventsResponse{
		Result:           contract.Success.Result(),
		Events:           page.Events,
		AffectedEvents:   page.AffectedEvents,
		LatestEventIndex: page.LatestIndex,
	}
}

func (x *Actor) summary(msg *Summary) *SummaryResponse {
	data := x.state.Data
	if msg.Caller != data.Profile.Principal {
		return &SummaryResponse{Result: contract.NotAuthorized.Result()}
	}

	groups := data.Groups.ToSlice()
	slices.Sort(groups)
	blocked := data.Blocked.ToSlice()
	slices.Sort(blocked)

	return &SummaryResponse{
		Result:    contract.Success.Result(),
		Profile:   data.Profile,
		Suspended: data.Suspended,
		Groups:    groups,
		Blocked:   blocked,
		Pending:   data.pendingCount(),
	}
}
