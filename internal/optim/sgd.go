package optim

import (
	"fmt"

	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/tensor"
)

// SGD implements stochastic gradient descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * grad
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + grad
//	param = param - lr * velocity
type SGD struct {
	params     []*nn.Parameter
	lr         float32
	momentum   float32
	velocities []*tensor.Tensor // indexed like params, nil until first use
}

// SGDConfig holds SGD hyperparameters.
type SGDConfig struct {
	LR       float32 // learning rate (default 0.01)
	Momentum float32 // momentum factor in [0, 1) (default 0)
}

// NewSGD creates an SGD optimizer over the given parameters.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make([]*tensor.Tensor, len(params)),
	}
}

// Step applies one SGD update to every parameter.
func (s *SGD) Step() {
	for i, param := range s.params {
		grad := param.Grad()

		if s.momentum == 0 {
			tensor.Axpy(-s.lr, grad, param.Tensor())
			continue
		}

		velocity := s.velocities[i]
		if velocity == nil {
			velocity = tensor.New(param.Tensor().Shape())
			s.velocities[i] = velocity
		}
		// velocity = momentum * velocity + grad
		data := velocity.Data()
		for j := range data {
			data[j] *= s.momentum
		}
		tensor.Axpy(1, grad, velocity)

		tensor.Axpy(-s.lr, velocity, param.Tensor())
	}
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD) ZeroGrad() {
	zeroGrads(s.params)
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float32 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float32) {
	s.lr = lr
}

// StateDict exports momentum velocities as "velocity.{index}".
//
// Without momentum there is no state and the map is empty.
func (s *SGD) StateDict() map[string]*tensor.Tensor {
	state := make(map[string]*tensor.Tensor)
	if s.momentum == 0 {
		return state
	}
	for i, velocity := range s.velocities {
		if velocity == nil {
			continue
		}
		state[fmt.Sprintf("velocity.%d", i)] = velocity
	}
	return state
}

// LoadStateDict restores momentum velocities.
//
// Missing velocities are left nil and initialized on the next Step.
func (s *SGD) LoadStateDict(state map[string]*tensor.Tensor) error {
	if s.momentum == 0 {
		return nil
	}
	s.velocities = make([]*tensor.Tensor, len(s.params))
	for i, param := range s.params {
		velocity, ok := state[fmt.Sprintf("velocity.%d", i)]
		if !ok {
			continue
		}
		if !velocity.Shape().Equal(param.Tensor().Shape()) {
			return fmt.Errorf("optim: velocity shape mismatch for parameter %d: expected %v, got %v",
				i, param.Tensor().Shape(), velocity.Shape())
		}
		s.velocities[i] = velocity.Clone()
	}
	return nil
}
