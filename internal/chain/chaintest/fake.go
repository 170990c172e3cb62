// Package chaintest provides an in-memory contract caller for tests.
package chaintest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ErrReverted is returned for calls without a registered handler.
var ErrReverted = errors.New("execution reverted")

// Handler answers one eth_call with raw return data.
type Handler func(ctx context.Context, data []byte, block *big.Int) ([]byte, error)

type key struct {
	to       common.Address
	selector [4]byte
}

// FakeCaller routes calls by target address and method selector.
type FakeCaller struct {
	mu       sync.Mutex
	handlers map[key]Handler
	calls    int
}

func NewFakeCaller() *FakeCaller {
	return &FakeCaller{handlers: make(map[key]Handler)}
}

// Handle registers a handler for method on to.
func (f *FakeCaller) Handle(to common.Address, parsed abi.ABI, method string, h Handler) {
	m, ok := parsed.Methods[method]
	if !ok {
		panic(fmt.Sprintf("chaintest: unknown method %s", method))
	}
	var sel [4]byte
	copy(sel[:], m.ID)
	f.mu.Lock()
	f.handlers[key{to: to, selector: sel}] = h
	f.mu.Unlock()
}

// Return registers static outputs for method on to regardless of arguments.
func (f *FakeCaller) Return(to common.Address, parsed abi.ABI, method string, outputs ...interface{}) {
	packed, err := parsed.Methods[method].Outputs.Pack(outputs...)
	if err != nil {
		panic(fmt.Sprintf("chaintest: pack %s outputs: %v", method, err))
	}
	f.Handle(to, parsed, method, func(context.Context, []byte, *big.Int) ([]byte, error) {
		return packed, nil
	})
}

// Fail registers a failing handler for method on to.
func (f *FakeCaller) Fail(to common.Address, parsed abi.ABI, method string, err error) {
	f.Handle(to, parsed, method, func(context.Context, []byte, *big.Int) ([]byte, error) {
		return nil, err
	})
}

// Calls returns the number of calls made so far.
func (f *FakeCaller) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// CallContract implements chain.Caller.
func (f *FakeCaller) CallContract(ctx context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error) {
	if msg.To == nil || len(msg.Data) < 4 {
		return nil, fmt.Errorf("chaintest: malformed call")
	}
	var sel [4]byte
	copy(sel[:], msg.Data[:4])

	f.mu.Lock()
	f.calls++
	h, ok := f.handlers[key{to: *msg.To, selector: sel}]
	f.mu.Unlock()

	if !ok {
		return nil, ErrReverted
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return h(ctx, msg.Data, block)
}
