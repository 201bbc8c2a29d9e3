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

package platform

import (
	"fmt"

	"github.com/actorchat/actorchat/actor"
	"github.com/actorchat/actorchat/env"
	"github.com/actorchat/actorchat/persistence"
)

// Restore decodes an actor image from its durable region and rebuilds the
// actor data from it. The region is reset only once rebuild succeeds, so a
// failing image stays in place for the next attempt.
// ok is false when the actor starts for the first time.
func Restore[I, D any](ctx *actor.Context, bridge *persistence.Bridge, rebuild func(*I) (D, error)) (data D, ok bool, err error) {
	img := new(I)
	meta, ok, err := bridge.Restore(ctx.Context(), img)
	if err != nil {
		return data, false, fmt.Errorf("%s: restoring state: %w", ctx.ActorName(), err)
	}

	if !ok {
		return data, false, nil
	}

	if data, err = rebuild(img); err != nil {
		return data, false, fmt.Errorf("%s: rebuilding state: %w", ctx.ActorName(), err)
	}

	if err := bridge.Reset(ctx.Context()); err != nil {
		return data, false, fmt.Errorf("%s: resetting region: %w", ctx.ActorName(), err)
	}

	ctx.Logger().Infof("%s restored from build %s taken at %s", ctx.ActorName(), meta.BuildVersion, meta.TakenAt)
	return data, true, nil
}

// Snapshot writes an actor image to its durable region
func Snapshot(ctx *actor.Context, bridge *persistence.Bridge, environment *env.Environment, image any) error {
	meta := persistence.Metadata{
		BuildVersion: environment.BuildVersion(),
		TakenAt:      environment.Now(),
	}

	if err := bridge.Snapshot(ctx.Context(), image, meta); err != nil {
		return fmt.Errorf("%s: writing snapshot: %w", ctx.ActorName(), err)
	}
	return nil
}
