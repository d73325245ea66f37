package dex

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

type callKey struct {
	to       common.Address
	selector [4]byte
}

type callHandler func(args []interface{}) ([]interface{}, error)

// fakeCaller decodes calldata with the package ABIs and answers from handlers
type fakeCaller struct {
	mu       sync.Mutex
	handlers map[callKey]callHandler
	methods  map[callKey]abi.Method
	calls    int
}

func newFakeCaller() *fakeCaller {
	return &fakeCaller{
		handlers: make(map[callKey]callHandler),
		methods:  make(map[callKey]abi.Method),
	}
}

func (f *fakeCaller) on(to common.Address, contract abi.ABI, method string, h callHandler) {
	m := contract.Methods[method]
	var sel [4]byte
	copy(sel[:], m.ID)
	k := callKey{to: to, selector: sel}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[k] = h
	f.methods[k] = m
}

func (f *fakeCaller) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	if msg.To == nil || len(msg.Data) < 4 {
		return nil, errors.New("bad call")
	}
	var sel [4]byte
	copy(sel[:], msg.Data[:4])
	k := callKey{to: *msg.To, selector: sel}

	f.mu.Lock()
	f.calls++
	h, ok := f.handlers[k]
	m := f.methods[k]
	f.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("execution reverted: no handler for %s %x", msg.To.Hex(), sel)
	}

	args, err := m.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, err
	}
	out, err := h(args)
	if err != nil {
		return nil, err
	}
	return m.Outputs.Pack(out...)
}
