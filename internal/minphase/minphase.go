// Package minphase converts impulse responses to their minimum-phase
// equivalents via the real-cepstrum method.
//
// HRTF measurements carry a propagation delay before the first acoustic
// arrival. The minimum-phase reconstruction keeps the magnitude response
// and moves the energy to the front of the impulse, which shortens the
// usable impulse length without resampling.
package minphase

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/MeKo-Christian/algo-fft"
)

// ErrEmptyImpulse indicates a zero-length input impulse.
var ErrEmptyImpulse = errors.New("minphase: empty impulse")

// logFloor keeps the log-magnitude finite at spectral nulls.
const logFloor = 1e-9

// Reconstruct returns the minimum-phase impulse with the same magnitude
// response as ir and the same length. The input is not modified.
func Reconstruct(ir []float32) ([]float32, error) {
	if len(ir) == 0 {
		return nil, ErrEmptyImpulse
	}

	// Pad well past the impulse length; the cepstral fold aliases badly
	// on tight transforms.
	fftSize := nextPowerOf2(4 * len(ir))

	plan, err := algofft.NewPlan32(fftSize)
	if err != nil {
		return nil, fmt.Errorf("minphase: failed to create FFT plan: %w", err)
	}

	buf := make([]complex64, fftSize)
	for i, v := range ir {
		buf[i] = complex(v, 0)
	}

	if err := plan.Forward(buf, buf); err != nil {
		return nil, fmt.Errorf("minphase: forward FFT failed: %w", err)
	}

	// Log magnitude spectrum, clamped away from zero.
	for i, c := range buf {
		mag := cmplx.Abs(complex128(c))
		if mag < logFloor {
			mag = logFloor
		}

		buf[i] = complex(float32(math.Log(mag)), 0)
	}

	// Real cepstrum (algo-fft scales the inverse by 1/N automatically).
	if err := plan.Inverse(buf, buf); err != nil {
		return nil, fmt.Errorf("minphase: inverse FFT failed: %w", err)
	}

	// Fold the cepstrum onto its causal half: c[0] and c[N/2] stay,
	// c[1..N/2-1] double, the anti-causal half vanishes.
	for i := 1; i < fftSize/2; i++ {
		buf[i] *= 2
	}

	for i := fftSize/2 + 1; i < fftSize; i++ {
		buf[i] = 0
	}

	if err := plan.Forward(buf, buf); err != nil {
		return nil, fmt.Errorf("minphase: forward FFT failed: %w", err)
	}

	for i := range buf {
		buf[i] = complex64(cmplx.Exp(complex128(buf[i])))
	}

	if err := plan.Inverse(buf, buf); err != nil {
		return nil, fmt.Errorf("minphase: inverse FFT failed: %w", err)
	}

	out := make([]float32, len(ir))
	for i := range out {
		out[i] = real(buf[i])
	}

	return out, nil
}

// nextPowerOf2 returns the smallest power of two >= n.
func nextPowerOf2(n int) int {
	size := 1
	for size < n {
		size *= 2
	}

	return size
}
