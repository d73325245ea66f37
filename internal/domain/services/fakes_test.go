package services

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/swap-router/internal/domain/entities"
)

var (
	tokenA = entities.WETH.Address
	tokenB = entities.USDC.Address

	errRPC = errors.New("rpc unavailable")
)

type readerKey struct {
	dex entities.DEXType
	fee uint32
}

// fakePoolReader serves pools from fixed tables
type fakePoolReader struct {
	mu          sync.Mutex
	addresses   map[readerKey]common.Address
	liquidity   map[common.Address]*big.Int
	failDEX     map[entities.DEXType]bool
	blockFee    map[uint32]bool
	failPool    map[common.Address]bool
	lookupCalls int32
}

func newFakePoolReader() *fakePoolReader {
	return &fakePoolReader{
		addresses: make(map[readerKey]common.Address),
		liquidity: make(map[common.Address]*big.Int),
		failDEX:   make(map[entities.DEXType]bool),
		blockFee:  make(map[uint32]bool),
		failPool:  make(map[common.Address]bool),
	}
}

func (f *fakePoolReader) addPool(dex entities.DEXType, fee uint32, addr common.Address, liquidity int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addresses[readerKey{dex, fee}] = addr
	f.liquidity[addr] = big.NewInt(liquidity)
}

func (f *fakePoolReader) PoolAddress(ctx context.Context, protocol entities.Protocol, tokenA, tokenB common.Address, fee uint32) (common.Address, error) {
	atomic.AddInt32(&f.lookupCalls, 1)
	f.mu.Lock()
	block := f.blockFee[fee] && protocol.Tiered()
	f.mu.Unlock()
	if block {
		<-ctx.Done()
		return common.Address{}, ctx.Err()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDEX[protocol.ID] {
		return common.Address{}, errRPC
	}
	return f.addresses[readerKey{protocol.ID, fee}], nil
}

func (f *fakePoolReader) PoolLiquidity(ctx context.Context, protocol entities.Protocol, pool common.Address) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPool[pool] {
		return nil, errRPC
	}
	if l, ok := f.liquidity[pool]; ok {
		return new(big.Int).Set(l), nil
	}
	return big.NewInt(0), nil
}

// fakeQuoteSource returns canned quotes or an error
type fakeQuoteSource struct {
	name   string
	quotes []entities.Quote
	err    error
	panics bool
	block  bool
}

func (f *fakeQuoteSource) Name() string { return f.name }

func (f *fakeQuoteSource) Quotes(ctx context.Context, req entities.QuoteRequest) ([]entities.Quote, error) {
	if f.panics {
		panic("boom")
	}
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([]entities.Quote, len(f.quotes))
	for i, q := range f.quotes {
		out[i] = q.Clone()
		out[i].TokenIn = req.TokenIn
		out[i].TokenOut = req.TokenOut
		out[i].AmountIn = req.AmountIn
	}
	return out, nil
}

func quote(dex entities.DEXType, fee uint32, amountOut int64) entities.Quote {
	return entities.Quote{
		DEX:        dex,
		AmountOut:  big.NewInt(amountOut),
		Fee:        fee,
		Route:      []string{string(dex)},
		Confidence: entities.ConfidenceHigh,
	}
}

func pool(dex entities.DEXType, fee uint32, addr string, liquidity int64) entities.PoolCandidate {
	return entities.PoolCandidate{
		DEX:       dex,
		Address:   common.HexToAddress(addr),
		Fee:       fee,
		Liquidity: big.NewInt(liquidity),
	}
}
