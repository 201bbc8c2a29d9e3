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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actorchat/actorchat/contract"
	"github.com/actorchat/actorchat/testkit"
)

const governance = contract.Principal("governance")

func validToken() *AddToken {
	return &AddToken{
		Caller:   governance,
		LedgerID: "mxzaz-hqaaa-aaaar-qaada-cai",
		Name:     "Chain Key Bitcoin",
		Symbol:   "ckBTC",
		Decimals: 8,
		Fee:      10,
		InfoURL:  "https://internetcomputer.org/bitcoin",
	}
}

func tokens(kit *testkit.TestKit, since *time.Time) *TokensResponse {
	return kit.Ask(contract.RegistryName, &Tokens{Since: since}).(*TokensResponse)
}

func addTokenCode(kit *testkit.TestKit, msg *AddToken) contract.Code {
	return kit.Ask(contract.RegistryName, msg).(contract.Result).Code
}

func TestRegistry(t *testing.T) {
	t.Run("Default token", func(t *testing.T) {
		kit := testkit.New(t)
		kit.Spawn(contract.RegistryName, New(kit.Deps()))

		resp := tokens(kit, nil)
		require.True(t, resp.OK())
		require.Len(t, resp.Tokens, 1)
		assert.Equal(t, DefaultToken.LedgerID, resp.Tokens[0].LedgerID)
		assert.Equal(t, testkit.Epoch, resp.Tokens[0].Added)
		assert.Equal(t, testkit.Epoch, resp.LastUpdated)
	})
	t.Run("Add token", func(t *testing.T) {
		kit := testkit.New(t)
		kit.Spawn(contract.RegistryName, New(kit.Deps()))
		kit.Clock().Advance(time.Hour)

		require.Equal(t, contract.Success, addTokenCode(kit, validToken()))
		assert.Equal(t, contract.AlreadyAdded, addTokenCode(kit, validToken()))

		sameSymbol := validToken()
		sameSymbol.LedgerID = "another-ledger"
		sameSymbol.Symbol = "CKBTC"
		assert.Equal(t, contract.AlreadyAdded, addTokenCode(kit, sameSymbol))

		resp := tokens(kit, nil)
		require.Len(t, resp.Tokens, 2)
		assert.Equal(t, "ckBTC", resp.Tokens[1].Symbol)
		assert.Equal(t, testkit.Epoch.Add(time.Hour), resp.LastUpdated)
	})
	t.Run("Rejections", func(t *testing.T) {
		kit := testkit.New(t)
		kit.Spawn(contract.RegistryName, New(kit.Deps()))

		unauthorized := validToken()
		unauthorized.Caller = "someone"
		assert.Equal(t, contract.NotAuthorized, addTokenCode(kit, unauthorized))

		testCases := map[string]func(*AddToken){
			"missing ledger":    func(m *AddToken) { m.LedgerID = "" },
			"missing name":      func(m *AddToken) { m.Name = "" },
			"symbol with space": func(m *AddToken) { m.Symbol = "ck BTC" },
			"too many decimals": func(m *AddToken) { m.Decimals = 19 },
			"bad info url":      func(m *AddToken) { m.InfoURL = "not a url" },
			"bad logo":          func(m *AddToken) { m.Logo = "logo.png" },
		}
		for name, mutate := range testCases {
			t.Run(name, func(t *testing.T) {
				msg := validToken()
				mutate(msg)
				assert.Equal(t, contract.InvalidRequest, addTokenCode(kit, msg))
			})
		}
		assert.Len(t, tokens(kit, nil).Tokens, 1)
	})
	t.Run("Tokens since", func(t *testing.T) {
		kit := testkit.New(t)
		kit.Spawn(contract.RegistryName, New(kit.Deps()))

		since := testkit.Epoch
		assert.Equal(t, contract.NoChange, tokens(kit, &since).Code)

		kit.Clock().Advance(time.Minute)
		require.Equal(t, contract.Success, addTokenCode(kit, validToken()))
		resp := tokens(kit, &since)
		require.True(t, resp.OK())
		assert.Len(t, resp.Tokens, 2)

		latest := resp.LastUpdated
		assert.Equal(t, contract.NoChange, tokens(kit, &latest).Code)
	})
	t.Run("Restart keeps tokens", func(t *testing.T) {
		kit := testkit.New(t)
		kit.Spawn(contract.RegistryName, New(kit.Deps()))
		kit.Clock().Advance(time.Minute)
		require.Equal(t, contract.Success, addTokenCode(kit, validToken()))
		before := tokens(kit, nil)

		restarted := kit.Restart()
		restarted.Clock().Advance(time.Minute)
		restarted.Spawn(contract.RegistryName, New(restarted.Deps()))

		after := tokens(restarted, nil)
		assert.Equal(t, before.Tokens, after.Tokens)
		// the default token is already there, nothing changed
		assert.Equal(t, before.LastUpdated, after.LastUpdated)
	})
}
