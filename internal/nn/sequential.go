package nn

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/born-ml/bayes/internal/tensor"
)

// Sequential is a container module that chains multiple modules together.
//
// Each module's output becomes the next module's input. KLDivergence sums
// the KL terms of every Bayesian child, so a network's variational penalty
// is available from the container alone.
//
// Example:
//
//	model := nn.NewSequential[Backend](
//	    conv,                 // *BayesConv2D
//	    nn.NewSoftplus[Backend](),
//	    nn.NewFlatten[Backend](),
//	    fc,                   // *BayesLinear
//	)
//
//	output := model.Forward(input)
//	kl := model.KLDivergence()
type Sequential[B tensor.Backend] struct {
	modules []Module[B]
}

// NewSequential creates a new Sequential container.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return &Sequential[B]{
		modules: modules,
	}
}

// Forward applies all modules in sequence.
func (s *Sequential[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	output := input
	for _, module := range s.modules {
		output = module.Forward(output)
	}
	return output
}

// Parameters returns all trainable parameters from all modules, in order.
func (s *Sequential[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, module := range s.modules {
		params = append(params, module.Parameters()...)
	}
	return params
}

// KLDivergence returns the sum of the KL divergences of all Bayesian
// children, or nil when no child is Bayesian.
func (s *Sequential[B]) KLDivergence() *tensor.Tensor[float32, B] {
	var total *tensor.Tensor[float32, B]
	for _, module := range s.modules {
		bayesian, ok := module.(Bayesian[B])
		if !ok {
			continue
		}
		kl := bayesian.KLDivergence()
		if kl == nil {
			continue
		}
		if total == nil {
			total = kl
		} else {
			total = total.Add(kl)
		}
	}
	return total
}

// SetMode sets the forward mode of every child that has one.
func (s *Sequential[B]) SetMode(mode Mode) {
	for _, module := range s.modules {
		if m, ok := module.(Moded); ok {
			m.SetMode(mode)
		}
	}
}

// Add appends a module to the sequence.
func (s *Sequential[B]) Add(module Module[B]) {
	s.modules = append(s.modules, module)
}

// Len returns the number of modules in the sequence.
func (s *Sequential[B]) Len() int {
	return len(s.modules)
}

// Module returns the module at the given index.
//
// Panics if index is out of bounds.
func (s *Sequential[B]) Module(index int) Module[B] {
	if index < 0 || index >= len(s.modules) {
		panic("Sequential.Module: index out of bounds")
	}
	return s.modules[index]
}

// StateDict returns a map of parameter names to raw tensors.
//
// Names are prefixed with the module index (e.g., "0.weight_mu", "3.bias_rho").
// Children that are not Stateful contribute nothing.
func (s *Sequential[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for i, module := range s.modules {
		stateful, ok := module.(Stateful)
		if !ok {
			continue
		}
		for name, raw := range stateful.StateDict() {
			stateDict[fmt.Sprintf("%d.%s", i, name)] = raw
		}
	}
	return stateDict
}

// LoadStateDict loads parameters produced by StateDict.
func (s *Sequential[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	grouped := make(map[int]map[string]*tensor.RawTensor)
	for key, raw := range stateDict {
		prefix, name, ok := strings.Cut(key, ".")
		if !ok {
			continue
		}
		index, err := strconv.Atoi(prefix)
		if err != nil {
			continue
		}
		if grouped[index] == nil {
			grouped[index] = make(map[string]*tensor.RawTensor)
		}
		grouped[index][name] = raw
	}

	for i, module := range s.modules {
		stateful, ok := module.(Stateful)
		if !ok {
			continue
		}
		if err := stateful.LoadStateDict(grouped[i]); err != nil {
			return fmt.Errorf("module %d: %w", i, err)
		}
	}
	return nil
}
