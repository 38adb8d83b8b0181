package geolib

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
)

type locateRequest struct {
	ctx           context.Context
	rawDomain     string
	resultChannel chan<- locateResponse
	wg            *sync.WaitGroup
}

type locateResponse struct {
	rawDomain string
	result    ServerLocationResult
}

type poolGroupRequest struct {
	ctx           context.Context
	cancel        context.CancelFunc
	resultChannel chan<- locateResponse
	wg            *sync.WaitGroup
	pool          *ants.PoolWithFunc
}

func (p *poolGroupRequest) Do(ctx context.Context, rawDomain string) error {
	select {
	case <-ctx.Done():
		return ErrContextIsClosed
	case <-p.ctx.Done():
		return ErrContextIsClosed
	default:
	}

	p.wg.Add(1)

	req := &locateRequest{
		ctx:           p.ctx,
		rawDomain:     rawDomain,
		resultChannel: p.resultChannel,
		wg:            p.wg,
	}

	if err := p.pool.Invoke(req); err != nil {
		p.wg.Done()
		p.cancel()

		return fmt.Errorf("cannot schedule a task: %w", err)
	}

	return nil
}

func newPoolGroupRequest(ctx context.Context,
	resultChannel chan<- locateResponse,
	wg *sync.WaitGroup,
	pool *ants.PoolWithFunc) *poolGroupRequest {
	ctx, cancel := context.WithCancel(ctx)

	return &poolGroupRequest{
		ctx:           ctx,
		cancel:        cancel,
		wg:            wg,
		resultChannel: resultChannel,
		pool:          pool,
	}
}
