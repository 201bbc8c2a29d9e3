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
	"time"

	"github.com/actorchat/actorchat/contract"
)

// AddToken registers a ledger. Only the governance principal may call it.
// Codes: Success, NotAuthorized, AlreadyAdded, InvalidRequest.
type AddToken struct {
	Caller   contract.Principal `validate:"required"`
	LedgerID string             `validate:"required,max=64"`
	Name     string             `validate:"required,max=64"`
	Symbol   string             `validate:"required,alphanum,max=10"`
	Decimals uint8              `validate:"lte=18"`
	Fee      uint64
	InfoURL  string `validate:"omitempty,url"`
	Logo     string `validate:"omitempty,datauri"`
}

// Tokens reads the registry. A Since at or after the last update yields
// NoChange.
type Tokens struct {
	Since *time.Time
}

// TokensResponse answers Tokens. Codes: Success, NoChange.
type TokensResponse struct {
	contract.Result
	LastUpdated time.Time
	Tokens      []Token
}
