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

package registry

import (
	"github.com/go-playground/validator/v10"

	"github.com/actorchat/actorchat/command"
	"github.com/actorchat/actorchat/contract"
	"github.com/actorchat/actorchat/platform"
)

var validation = validator.New(validator.WithRequiredStructEnabled())

type addToken struct {
	state *State
	deps  *platform.Deps
	args  *AddToken
}

func (c *addToken) Name() string { return "registry.add_token" }

func (c *addToken) validate() contract.Code {
	data := c.state.Data
	switch {
	case c.args.Caller != c.deps.Settings.GovernancePrincipal:
		return contract.NotAuthorized
	case validation.Struct(c.args) != nil:
		return contract.InvalidRequest
	case data.exists(c.args.LedgerID), data.symbolTaken(c.args.Symbol):
		return contract.AlreadyAdded
	}
	return contract.Success
}

func (c *addToken) Prepare() (struct{}, contract.Result, bool) {
	if code := c.validate(); code != contract.Success {
		return struct{}{}, code.Result(), false
	}
	return struct{}{}, contract.Result{}, true
}

func (c *addToken) Perform(struct{}) (*command.Call, error) { return nil, nil }

func (c *addToken) Commit(struct{}, any) (contract.Result, bool) {
	if code := c.validate(); code != contract.Success {
		return code.Result(), false
	}

	c.state.Data.add(Token{
		LedgerID: c.args.LedgerID,
		Name:     c.args.Name,
		Symbol:   c.args.Symbol,
		Decimals: c.args.Decimals,
		Fee:      c.args.Fee,
		InfoURL:  c.args.InfoURL,
		Logo:     c.args.Logo,
	}, c.state.Env.Now())
	return contract.Success.Result(), true
}

func (c *addToken) Failed(_ struct{}, err error) contract.Result {
	return contract.Failure(err)
}
