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

// Package registry holds the platform wide token registry
package registry

import (
	"github.com/actorchat/actorchat/actor"
	"github.com/actorchat/actorchat/command"
	"github.com/actorchat/actorchat/contract"
	"github.com/actorchat/actorchat/env"
	"github.com/actorchat/actorchat/persistence"
	"github.com/actorchat/actorchat/platform"
)

// Actor is the token registry
type Actor struct {
	deps *platform.Deps

	state     *State
	bridge    *persistence.Bridge
	processor *command.Processor
}

var _ actor.Actor = (*Actor)(nil)

// New creates the registry
func New(deps *platform.Deps) *Actor {
	return &Actor{deps: deps}
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

	if data.add(DefaultToken, x.deps.Env.Now()) {
		ctx.Logger().Infof("registered default token %s", DefaultToken.Symbol)
	}

	x.state = env.NewRuntimeState(x.deps.Env, data)
	return nil
}

func (x *Actor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *actor.PostStart:
	case *AddToken:
		command.Execute[struct{}, contract.Result](x.processor, ctx, &addToken{state: x.state, deps: x.deps, args: msg})
	case *Tokens:
		ctx.Response(x.tokens(msg))
	default:
		ctx.Unhandled()
	}
}

func (x *Actor) PostStop(ctx *actor.Context) error {
	if x.state == nil {
		return nil
	}
	return platform.Snapshot(ctx, x.bridge, x.deps.Env, x.state.Data.image())
}

func (x *Actor) tokens(msg *Tokens) *TokensResponse {
	data := x.state.Data
	if msg.Since != nil && !data.lastUpdated.After(*msg.Since) {
		return &TokensResponse{Result: contract.NoChange.Result(), LastUpdated: data.lastUpdated}
	}

	return &TokensResponse{
		Result:      contract.Success.Result(),
		LastUpdated: data.lastUpdated,
		Tokens:      data.list(),
	}
}
