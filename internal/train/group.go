package train

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ember-ml/ember/internal/nn"
)

// gradExchange averages gradient contributions across the worker
// group. One exchange round behaves like a synchronous allreduce:
// every worker blocks until all WorldSize contributions have arrived,
// then each receives the elementwise mean.
//
// A dedicated coordinator goroutine does the reduction, which keeps
// the workers free of shared-state locking and makes cancellation a
// plain context select.
type gradExchange struct {
	world int
	in    chan contribution
}

type contribution struct {
	grads [][]float32
	reply chan [][]float32
}

func newGradExchange(ctx context.Context, world int) *gradExchange {
	ex := &gradExchange{
		world: world,
		in:    make(chan contribution, world),
	}
	go ex.run(ctx)
	return ex
}

func (ex *gradExchange) run(ctx context.Context) {
	for {
		pending := make([]contribution, 0, ex.world)
		for len(pending) < ex.world {
			select {
			case <-ctx.Done():
				return
			case c := <-ex.in:
				pending = append(pending, c)
			}
		}

		// Sum into the first contribution's buffers, then scale.
		mean := pending[0].grads
		for _, c := range pending[1:] {
			for i, grad := range c.grads {
				dst := mean[i]
				for j, v := range grad {
					dst[j] += v
				}
			}
		}
		inv := 1 / float32(ex.world)
		for _, grad := range mean {
			for j := range grad {
				grad[j] *= inv
			}
		}

		for _, c := range pending {
			select {
			case <-ctx.Done():
				return
			case c.reply <- mean:
			}
		}
	}
}

// allreduce submits this worker's gradients and blocks until the
// group mean is available, then copies the mean back into the
// caller's buffers. Returns the context error if the run is canceled
// while waiting (for example because another worker failed).
func (ex *gradExchange) allreduce(ctx context.Context, grads [][]float32) error {
	// The coordinator sums in place, so contribute copies and keep
	// the caller's buffers as the destination.
	copies := make([][]float32, len(grads))
	for i, g := range grads {
		copies[i] = append([]float32(nil), g...)
	}

	reply := make(chan [][]float32, 1)
	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "train: allreduce canceled")
	case ex.in <- contribution{grads: copies, reply: reply}:
	}

	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "train: allreduce canceled")
	case mean := <-reply:
		for i, g := range mean {
			copy(grads[i], g)
		}
		return nil
	}
}

// gradBuffers extracts the gradient storage of each parameter, in
// parameter order. Every worker's replica lists parameters in the
// same order, which is what makes index-wise reduction valid.
func gradBuffers(params []*nn.Parameter) [][]float32 {
	out := make([][]float32, len(params))
	for i, p := range params {
		out[i] = p.Grad().Data()
	}
	return out
}
