package optim

import (
	"fmt"
	"math"

	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/tensor"
)

// Adam implements the Adam optimizer (Kingma & Ba, 2015) with bias
// correction.
//
// Update rule per element:
//
//	m = beta1 * m + (1 - beta1) * grad
//	v = beta2 * v + (1 - beta2) * grad²
//	mHat = m / (1 - beta1^t)
//	vHat = v / (1 - beta2^t)
//	param -= lr * mHat / (sqrt(vHat) + eps)
type Adam struct {
	params []*nn.Parameter
	lr     float32
	beta1  float32
	beta2  float32
	eps    float32
	step   int64

	m []*tensor.Tensor // first moments, indexed like params
	v []*tensor.Tensor // second moments
}

// AdamConfig holds Adam hyperparameters.
type AdamConfig struct {
	LR    float32    // learning rate (default 0.001)
	Betas [2]float32 // moment decay rates (default 0.9, 0.999)
	Eps   float32    // numerical stability term (default 1e-8)
}

// NewAdam creates an Adam optimizer over the given parameters.
func NewAdam(params []*nn.Parameter, config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas == [2]float32{} {
		config.Betas = [2]float32{0.9, 0.999}
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	return &Adam{
		params: params,
		lr:     config.LR,
		beta1:  config.Betas[0],
		beta2:  config.Betas[1],
		eps:    config.Eps,
		m:      make([]*tensor.Tensor, len(params)),
		v:      make([]*tensor.Tensor, len(params)),
	}
}

// Step applies one Adam update to every parameter.
func (a *Adam) Step() {
	a.step++
	bc1 := 1 - float32(math.Pow(float64(a.beta1), float64(a.step)))
	bc2 := 1 - float32(math.Pow(float64(a.beta2), float64(a.step)))

	for i, param := range a.params {
		grad := param.Grad().Data()

		if a.m[i] == nil {
			a.m[i] = tensor.New(param.Tensor().Shape())
			a.v[i] = tensor.New(param.Tensor().Shape())
		}
		m := a.m[i].Data()
		v := a.v[i].Data()
		data := param.Tensor().Data()

		for j, g := range grad {
			m[j] = a.beta1*m[j] + (1-a.beta1)*g
			v[j] = a.beta2*v[j] + (1-a.beta2)*g*g
			mHat := m[j] / bc1
			vHat := v[j] / bc2
			data[j] -= a.lr * mHat / (float32(math.Sqrt(float64(vHat))) + a.eps)
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (a *Adam) ZeroGrad() {
	zeroGrads(a.params)
}

// GetLR returns the current learning rate.
func (a *Adam) GetLR() float32 {
	return a.lr
}

// StateDict exports the moment buffers and step counter.
//
// Keys: "m.{index}", "v.{index}", and "step" (a single-element tensor,
// which keeps the state dict uniform).
func (a *Adam) StateDict() map[string]*tensor.Tensor {
	state := make(map[string]*tensor.Tensor)
	for i := range a.params {
		if a.m[i] == nil {
			continue
		}
		state[fmt.Sprintf("m.%d", i)] = a.m[i]
		state[fmt.Sprintf("v.%d", i)] = a.v[i]
	}
	step := tensor.New(tensor.Shape{1})
	step.Data()[0] = float32(a.step)
	state["step"] = step
	return state
}

// LoadStateDict restores moment buffers and the step counter.
func (a *Adam) LoadStateDict(state map[string]*tensor.Tensor) error {
	a.m = make([]*tensor.Tensor, len(a.params))
	a.v = make([]*tensor.Tensor, len(a.params))
	for i, param := range a.params {
		m, okM := state[fmt.Sprintf("m.%d", i)]
		v, okV := state[fmt.Sprintf("v.%d", i)]
		if !okM || !okV {
			continue
		}
		if !m.Shape().Equal(param.Tensor().Shape()) || !v.Shape().Equal(param.Tensor().Shape()) {
			return fmt.Errorf("optim: moment shape mismatch for parameter %d", i)
		}
		a.m[i] = m.Clone()
		a.v[i] = v.Clone()
	}
	if step, ok := state["step"]; ok {
		a.step = int64(step.Data()[0])
	}
	return nil
}
