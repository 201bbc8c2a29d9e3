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

// Package groupindex holds the registry of groups: unique names, activity
// and recommendations. It owns the lifecycle of the group actors.
package groupindex

import (
	"errors"
	"slices"

	"github.com/actorchat/actorchat/actor"
	"github.com/actorchat/actorchat/command"
	"github.com/actorchat/actorchat/contract"
	"github.com/actorchat/actorchat/env"
	gerrors "github.com/actorchat/actorchat/errors"
	"github.com/actorchat/actorchat/group"
	"github.com/actorchat/actorchat/jobs"
	"github.com/actorchat/actorchat/persistence"
	"github.com/actorchat/actorchat/platform"
)

const (
	// RefreshJobName is the job rebuilding the recommendation cache
	RefreshJobName = "refresh-hot-groups"

	hotGroupsSize = 100
)

// Actor is the group index
type Actor struct {
	deps *platform.Deps

	state      *State
	bridge     *persistence.Bridge
	processor  *command.Processor
	jobs       *jobs.Scheduler
	refreshJob jobs.Job
}

var _ actor.Actor = (*Actor)(nil)

// New creates the group index
func New(deps *platform.Deps) *Actor {
	return &Actor{
		deps: deps,
		refreshJob: jobs.Job{
			Name:     RefreshJobName,
			Interval: deps.Settings.HotGroupsInterval,
			Message:  new(RefreshHotGroups),
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
	data.refreshHot(hotGroupsSize)

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
	case *CreateGroup:
		command.Execute[contract.GroupID, *CreateGroupResponse](x.processor, ctx, &createGroup{state: x.state, deps: x.deps, args: msg})
	case *contract.MarkActive:
		command.Execute[struct{}, *contract.MarkActiveResponse](x.processor, ctx, &markActive{state: x.state, args: msg})
	case *RefreshHotGroups:
		x.state.Data.refreshHot(hotGroupsSize)
		ctx.Response(contract.Success.Result())
	case *contract.RecommendedGroups:
		ctx.Response(x.recommended(msg))
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

// postStart brings back the actor of every group
// respawn brings back every known group before the index is reachable
func (x *Actor) respawn(ctx *actor.Context) {
	for _, entry := range x.state.Data.entries() {
		if _, err := group.Spawn(ctx.Context(), ctx.ActorSystem(), x.deps, entry.Profile); err != nil && !errors.Is(err, gerrors.ErrActorAlreadyExists) {
			ctx.Logger().Errorf("cannot spawn group %s: %v", entry.Profile.GroupID, err)
		}
	}
}

func (x *Actor) postStart(ctx *actor.ReceiveContext) {
	if _, err := x.jobs.Start(ctx.Context(), x.refreshJob); err != nil {
		ctx.Logger().Errorf("cannot start %s: %v", RefreshJobName, err)
	}
	ctx.Logger().Infof("group index ready with %d groups", len(x.state.Data.groups))
}

func (x *Actor) recommended(msg *contract.RecommendedGroups) *contract.RecommendedGroupsResponse {
	groups := make([]contract.GroupSummary, 0, max(msg.Count, 0))
	for _, summary := range x.state.Data.hot {
		if msg.Count > 0 && len(groups) >= msg.Count {
			break
		}
		if slices.Contains(msg.Exclusions, summary.GroupID) {
			continue
		}
		groups = append(groups, summary)
	}
	return &contract.RecommendedGroupsResponse{Result: contract.Success.Result(), Groups: groups}
}
