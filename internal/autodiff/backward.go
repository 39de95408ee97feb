package autodiff

import (
	"fmt"

	"github.com/born-ml/bayes/internal/tensor"
)

// BackwardCapable is implemented by backends that own a gradient tape.
type BackwardCapable interface {
	tensor.Backend
	GetTape() *GradientTape
}

// GetTape returns the gradient tape (implements BackwardCapable).
func (b *AutodiffBackend[B]) GetTape() *GradientTape {
	return b.tape
}

// Backward computes gradients of t using the backend's tape.
//
// The seed gradient is a tensor of ones shaped like t, so for a scalar loss
// the result holds ∂loss/∂x for every recorded x.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	x := tensor.Ones[float32](Shape{2}, backend)
//	y := x.Mul(x).Sum()
//	gradients := autodiff.Backward(y, backend)
//	grad := gradients[x.Raw()] // 2x
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	tape := backend.GetTape()
	if tape.NumOps() == 0 {
		panic("backward: no operations recorded (did you forget to call Tape().StartRecording()?)")
	}

	seed, err := tensor.NewRaw(t.Shape(), t.DType(), backend.Device())
	if err != nil {
		panic(fmt.Sprintf("backward: failed to create output gradient: %v", err))
	}
	seed.Fill(1)

	return tape.Backward(t.Raw(), seed, backend)
}
