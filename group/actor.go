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

package group

import (
	"context"

	"github.com/actorchat/actorchat/actor"
	"github.com/actorchat/actorchat/command"
	"github.com/actorchat/actorchat/contract"
	"github.com/actorchat/actorchat/env"
	"github.com/actorchat/actorchat/eventlog"
	"github.com/actorchat/actorchat/persistence"
	"github.com/actorchat/actorchat/platform"
)

// Actor owns the state of one group chat
type Actor struct {
	deps    *platform.Deps
	profile contract.GroupProfile

	state     *State
	bridge    *persistence.Bridge
	processor *command.Processor
}

var _ actor.Actor = (*Actor)(nil)

// New creates the actor of the group described by profile. The profile is
// only used when the group has no durable image yet.
func New(deps *platform.Deps, profile contract.GroupProfile) *Actor {
	return &Actor{deps: deps, profile: profile}
}

// Spawn starts the actor of the group described by profile
func Spawn(ctx context.Context, system actor.ActorSystem, deps *platform.Deps, profile contract.GroupProfile) (*actor.PID, error) {
	return system.Spawn(ctx, contract.GroupActorName(profile.GroupID), New(deps, profile), deps.SpawnOptions()...)
}

// PreStart rebuilds the group from its durable image or creates it
func (x *Actor) PreStart(ctx *actor.Context) error {
	processor, err := x.deps.Processor(command.WithNotifier(command.NotifierFunc(x.notifyActivity)))
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
		data = newData(x.profile, x.deps.Settings.MaxParticipants, x.deps.Env.Now())
	}

	x.state = env.NewRuntimeState(x.deps.Env, data)
	return nil
}

// Receive handles the group messages
func (x *Actor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *actor.PostStart:
		ctx.Logger().Debugf("group %s ready with %d participants", x.state.Data.Profile.Name, x.state.Data.Participants.Len())
	case *BlockUser:
		command.Execute[blockIntent, contract.Result](x.processor, ctx, &blockUser{state: x.state, args: msg})
	case *UnblockUser:
		command.Execute[unblockIntent, contract.Result](x.processor, ctx, &unblockUser{state: x.state, args: msg})
	case *RemoveParticipant:
		command.Execute[removeIntent, contract.Result](x.processor, ctx, &removeParticipant{state: x.state, args: msg})
	case *contract.JoinGroup:
		command.Execute[struct{}, *contract.JoinGroupResponse](x.processor, ctx, &joinGroup{state: x.state, args: msg})
	case *LeaveGroup:
		command.Execute[contract.UserID, contract.Result](x.processor, ctx, &leaveGroup{state: x.state, args: msg})
	case *ChangeRole:
		command.Execute[roleIntent, contract.Result](x.processor, ctx, &changeRole{state: x.state, args: msg})
	case *SendMessage:
		command.Execute[contract.UserID, *SendMessageResponse](x.processor, ctx, &sendMessage{state: x.state, args: msg})
	case *DeleteMessage:
		command.Execute[contract.UserID, contract.Result](x.processor, ctx, &deleteMessage{state: x.state, args: msg})
	case *AddReaction:
		command.Execute[contract.UserID, *ReactionResponse](x.processor, ctx, &react{
			state: x.state, caller: msg.Caller, messageID: msg.MessageID, reaction: msg.Reaction, add: true,
		})
	case *RemoveReaction:
		command.Execute[contract.UserID, *ReactionResponse](x.processor, ctx, &react{
			state: x.state, caller: msg.Caller, messageID: msg.MessageID, reaction: msg.Reaction,
		})
	case *contract.SetUserSuspended:
		command.Execute[struct{}, *contract.SetUserSuspendedResponse](x.processor, ctx, &setUserSuspended{state: x.state, args: msg})
	case *Events:
		ctx.Response(x.events(msg))
	case *Summary:
		ctx.Response(x.summary(msg))
	default:
		ctx.Unhandled()
	}
}

// PostStop writes the durable image of the group
func (x *Actor) PostStop(ctx *actor.Context) error {
	if x.state == nil {
		return nil
	}
	return platform.Snapshot(ctx, x.bridge, x.deps.Env, x.state.Data.image())
}

func (x *Actor) events(msg *Events) *EventsResponse {
	data := x.state.Data
	if _, ok := data.Participants.GetByPrincipal(msg.Caller); !ok {
		return &EventsResponse{Result: contract.CallerNotInGroup.Result()}
	}

	page := data.Events.Range(eventlog.RangeOptions{
		Start:     msg.Start,
		Ascending: msg.Ascending,
		MaxEvents: msg.MaxEvents,
		MaxWeight: msg.MaxMessages,
	}, messageWeight)

	return &EventsResponse{
		Result:           contract.Success.Result(),
		Events:           page.Events,
		AffectedEvents:   page.AffectedEvents,
		LatestEventIndex: page.LatestIndex,
	}
}

func (x *Actor) summary(msg *Summary) *SummaryResponse {
	data := x.state.Data
	if _, ok := data.Participants.GetByPrincipal(msg.Caller); !ok {
		return &SummaryResponse{Result: contract.CallerNotInGroup.Result()}
	}

	return &SummaryResponse{
		Result:       contract.Success.Result(),
		Profile:      data.Profile,
		Participants: data.Participants.List(),
		Blocked:      data.Participants.Blocked(),
	}
}

// notifyActivity tells the group index the group changed. It never blocks
// the commit it follows.
func (x *Actor) notifyActivity(ctx *actor.ReceiveContext) error {
	index, err := ctx.ActorSystem().ActorOf(ctx.Context(), contract.GroupIndexName)
	if err != nil {
		return err
	}

	data := x.state.Data
	return ctx.Self().Tell(ctx.Context(), index, &contract.MarkActive{
		GroupID:      data.Profile.GroupID,
		At:           x.state.Env.Now(),
		Participants: data.Participants.Len(),
		Public:       data.Profile.Public,
	})
}
