package optim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/optim"
	"github.com/ember-ml/ember/internal/tensor"
)

func paramWithGrad(t *testing.T, value, grad float32) *nn.Parameter {
	t.Helper()
	x, err := tensor.FromSlice([]float32{value}, tensor.Shape{1})
	require.NoError(t, err)
	p := nn.NewParameter("x", x)
	g, err := tensor.FromSlice([]float32{grad}, tensor.Shape{1})
	require.NoError(t, err)
	p.AccumGrad(g)
	return p
}

func TestSGDSimpleUpdate(t *testing.T) {
	p := paramWithGrad(t, 2.0, 1.0)
	opt := optim.NewSGD([]*nn.Parameter{p}, optim.SGDConfig{LR: 0.1})

	opt.Step()

	// x_new = 2.0 - 0.1 * 1.0
	assert.InDelta(t, 1.9, p.Tensor().Data()[0], 1e-6)
}

func TestSGDWithMomentum(t *testing.T) {
	p := paramWithGrad(t, 1.0, 1.0)
	opt := optim.NewSGD([]*nn.Parameter{p}, optim.SGDConfig{LR: 0.1, Momentum: 0.9})

	// Step 1: velocity = 1.0, x = 1.0 - 0.1 = 0.9
	opt.Step()
	assert.InDelta(t, 0.9, p.Tensor().Data()[0], 1e-6)

	// Step 2 with the same gradient: velocity = 0.9 + 1.0 = 1.9,
	// x = 0.9 - 0.19 = 0.71
	opt.Step()
	assert.InDelta(t, 0.71, p.Tensor().Data()[0], 1e-6)
}

func TestSGDZeroGrad(t *testing.T) {
	p := paramWithGrad(t, 1.0, 1.0)
	opt := optim.NewSGD([]*nn.Parameter{p}, optim.SGDConfig{LR: 0.1})

	opt.ZeroGrad()
	opt.Step()
	assert.InDelta(t, 1.0, p.Tensor().Data()[0], 1e-6)
}

func TestSGDStateDictRoundtrip(t *testing.T) {
	p := paramWithGrad(t, 1.0, 1.0)
	opt := optim.NewSGD([]*nn.Parameter{p}, optim.SGDConfig{LR: 0.1, Momentum: 0.9})
	opt.Step()

	state := opt.StateDict()
	require.Contains(t, state, "velocity.0")

	p2 := paramWithGrad(t, 0.9, 1.0)
	opt2 := optim.NewSGD([]*nn.Parameter{p2}, optim.SGDConfig{LR: 0.1, Momentum: 0.9})
	require.NoError(t, opt2.LoadStateDict(state))

	// Restored optimizer continues the momentum trajectory.
	opt2.Step()
	assert.InDelta(t, 0.71, p2.Tensor().Data()[0], 1e-6)
}

func TestAdamFirstStep(t *testing.T) {
	p := paramWithGrad(t, 1.0, 0.5)
	opt := optim.NewAdam([]*nn.Parameter{p}, optim.AdamConfig{LR: 0.001})

	opt.Step()

	// With bias correction the first step moves by ~lr regardless of
	// gradient magnitude.
	assert.InDelta(t, 1.0-0.001, p.Tensor().Data()[0], 1e-5)
}

func TestAdamStateDictRoundtrip(t *testing.T) {
	p := paramWithGrad(t, 1.0, 0.5)
	opt := optim.NewAdam([]*nn.Parameter{p}, optim.AdamConfig{LR: 0.001})
	opt.Step()
	opt.Step()

	state := opt.StateDict()
	require.Contains(t, state, "m.0")
	require.Contains(t, state, "v.0")
	require.Contains(t, state, "step")
	assert.Equal(t, float32(2), state["step"].Data()[0])

	p2 := paramWithGrad(t, 1.0, 0.5)
	opt2 := optim.NewAdam([]*nn.Parameter{p2}, optim.AdamConfig{LR: 0.001})
	require.NoError(t, opt2.LoadStateDict(state))
	assert.Equal(t, opt.StateDict()["m.0"].Data(), opt2.StateDict()["m.0"].Data())
}

func TestNewByName(t *testing.T) {
	p := paramWithGrad(t, 1.0, 1.0)

	opt, err := optim.New("sgd", []*nn.Parameter{p}, 0.05)
	require.NoError(t, err)
	assert.Equal(t, float32(0.05), opt.GetLR())

	opt, err = optim.New("adam", []*nn.Parameter{p}, 0.002)
	require.NoError(t, err)
	assert.Equal(t, float32(0.002), opt.GetLR())

	_, err = optim.New("lbfgs", []*nn.Parameter{p}, 0.1)
	assert.Error(t, err)
}
