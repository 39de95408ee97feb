package tensor

import "fmt"

// Device represents the compute device holding tensor data.
type Device int

// Supported compute devices.
const (
	CPU Device = iota
	CUDA
	WebGPU
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	case CUDA:
		return "CUDA"
	case WebGPU:
		return "WebGPU"
	default:
		return "Unknown"
	}
}

// RawTensor is the low-level, untyped tensor representation that backends
// operate on. Data is dense and row-major.
type RawTensor struct {
	shape  Shape
	stride []int
	dtype  DataType
	device Device
	f32    []float32
	f64    []float64
}

// NewRaw allocates a zero-filled RawTensor with the given shape and type.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	r := &RawTensor{
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
		device: device,
	}
	switch dtype {
	case Float32:
		r.f32 = make([]float32, shape.NumElements())
	case Float64:
		r.f64 = make([]float64, shape.NumElements())
	default:
		return nil, fmt.Errorf("unsupported dtype %s", dtype)
	}
	return r, nil
}

// MustNewRaw is like NewRaw but panics on error.
// Backends use it for results whose shape has already been checked.
func MustNewRaw(shape Shape, dtype DataType, device Device) *RawTensor {
	r, err := NewRaw(shape, dtype, device)
	if err != nil {
		panic(err)
	}
	return r
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's row-major strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Device returns the tensor's compute device.
func (r *RawTensor) Device() Device {
	return r.device
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * r.dtype.Size()
}

// AsFloat32 returns the underlying []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("tensor dtype is %s, not float32", r.dtype))
	}
	return r.f32
}

// AsFloat64 returns the underlying []float64.
// Panics if the tensor's dtype is not Float64.
func (r *RawTensor) AsFloat64() []float64 {
	if r.dtype != Float64 {
		panic(fmt.Sprintf("tensor dtype is %s, not float64", r.dtype))
	}
	return r.f64
}

// Clone returns a deep copy of the tensor.
func (r *RawTensor) Clone() *RawTensor {
	c := &RawTensor{
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
		device: r.device,
	}
	if r.f32 != nil {
		c.f32 = append([]float32(nil), r.f32...)
	}
	if r.f64 != nil {
		c.f64 = append([]float64(nil), r.f64...)
	}
	return c
}

// View returns a tensor sharing r's data under a new shape.
// The element count must match.
func (r *RawTensor) View(shape Shape) (*RawTensor, error) {
	if shape.NumElements() != r.NumElements() {
		return nil, fmt.Errorf("cannot view %v (%d elements) as %v (%d elements)",
			r.shape, r.NumElements(), shape, shape.NumElements())
	}
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return &RawTensor{
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  r.dtype,
		device: r.device,
		f32:    r.f32,
		f64:    r.f64,
	}, nil
}

// Fill sets every element to v.
func (r *RawTensor) Fill(v float64) {
	switch r.dtype {
	case Float32:
		for i := range r.f32 {
			r.f32[i] = float32(v)
		}
	case Float64:
		for i := range r.f64 {
			r.f64[i] = v
		}
	}
}

// CopyFrom copies src's elements into r. Shapes must hold the same number of
// elements and dtypes must match.
func (r *RawTensor) CopyFrom(src *RawTensor) error {
	if r.dtype != src.dtype {
		return fmt.Errorf("dtype mismatch: %s vs %s", r.dtype, src.dtype)
	}
	if r.NumElements() != src.NumElements() {
		return fmt.Errorf("element count mismatch: %d vs %d", r.NumElements(), src.NumElements())
	}
	switch r.dtype {
	case Float32:
		copy(r.f32, src.f32)
	case Float64:
		copy(r.f64, src.f64)
	}
	return nil
}
