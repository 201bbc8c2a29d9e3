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
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/actorchat/actorchat/env"
)

// SchemaVersion is the version of the durable registry image
const SchemaVersion uint32 = 1

// State is the runtime state handed to every registry handler
type State = env.RuntimeState[*Data]

// Token describes a ledger the platform can transfer
type Token struct {
	LedgerID string    `cbor:"1,keyasint"`
	Name     string    `cbor:"2,keyasint"`
	Symbol   string    `cbor:"3,keyasint"`
	Decimals uint8     `cbor:"4,keyasint"`
	Fee      uint64    `cbor:"5,keyasint"`
	InfoURL  string    `cbor:"6,keyasint,omitempty"`
	Logo     string    `cbor:"7,keyasint,omitempty"`
	Added    time.Time `cbor:"8,keyasint"`
}

// DefaultToken is registered on every boot when missing
var DefaultToken = Token{
	LedgerID: "ryjl3-tyaaa-aaaaa-aaaba-cai",
	Name:     "Internet Computer",
	Symbol:   "ICP",
	Decimals: 8,
	Fee:      10_000,
	InfoURL:  "https://internetcomputer.org",
}

// Data is the state of the registry
type Data struct {
	tokens      map[string]*Token
	lastUpdated time.Time
}

func newData() *Data {
	return &Data{tokens: make(map[string]*Token)}
}

func (d *Data) exists(ledgerID string) bool {
	_, ok := d.tokens[ledgerID]
	return ok
}

func (d *Data) symbolTaken(symbol string) bool {
	for _, token := range d.tokens {
		if strings.EqualFold(token.Symbol, symbol) {
			return true
		}
	}
	return false
}

// add registers a token. It reports false when the ledger is known.
func (d *Data) add(token Token, now time.Time) bool {
	if d.exists(token.LedgerID) {
		return false
	}
	token.Added = now
	d.tokens[token.LedgerID] = &token
	d.lastUpdated = now
	return true
}

// list returns the tokens in the order they were added
func (d *Data) list() []Token {
	out := make([]Token, 0, len(d.tokens))
	for _, token := range d.tokens {
		out = append(out, *token)
	}
	slices.SortFunc(out, func(a, b Token) int {
		if c := a.Added.Compare(b.Added); c != 0 {
			return c
		}
		return strings.Compare(a.LedgerID, b.LedgerID)
	})
	return out
}

type image struct {
	Tokens      []Token   `cbor:"1,keyasint"`
	LastUpdated time.Time `cbor:"2,keyasint"`
}

func (d *Data) image() image {
	return image{Tokens: d.list(), LastUpdated: d.lastUpdated}
}

func (img image) restore() (*Data, error) {
	data := newData()
	for _, token := range img.Tokens {
		if data.exists(token.LedgerID) {
			return nil, fmt.Errorf("registry: ledger %s is listed twice", token.LedgerID)
		}
		t := token
		data.tokens[token.LedgerID] = &t
	}
	data.lastUpdated = img.LastUpdated
	return data, nil
}
