// Package convert clones a finalized host into a different scalar type.
//
// Conversion goes through the model's own CloneForScalar contract, then
// builds and finalizes a brand-new host around the clone. Source and
// target share no mutable state; topology counts and structural indices
// match exactly. The supported scalar set is whatever scalar.KindOf
// declares, so there is one conversion function, not one per pair.
package convert

import (
	"errors"
	"fmt"

	"github.com/san-kum/kinhost/internal/host"
	"github.com/san-kum/kinhost/internal/scalar"
)

// ErrBadClone indicates a model clone of the wrong scalar type.
var ErrBadClone = errors.New("convert: model clone has wrong scalar type")

// To clones h into a host over the Dst scalar type, running the full
// build-finalize sequence on the clone. Converting a non-finalized host
// is a contract violation.
func To[Dst scalar.Num[Dst], Src scalar.Num[Src]](h *host.Host[Src]) (*host.Host[Dst], error) {
	if h == nil {
		return nil, host.ErrNilModel
	}
	if !h.Finalized() {
		return nil, fmt.Errorf("%w: scalar conversion requires a finalized host", host.ErrNotFinalized)
	}

	kind, err := scalar.KindOf[Dst]()
	if err != nil {
		return nil, err
	}

	raw, err := h.Model().CloneForScalar(kind)
	if err != nil {
		return nil, fmt.Errorf("convert: cloning model to %s: %w", kind, err)
	}
	m, ok := raw.(host.Model[Dst])
	if !ok {
		return nil, fmt.Errorf("%w: got %T, want Model[%s]", ErrBadClone, raw, kind)
	}

	out, err := host.New[Dst](m, h.IsDiscrete())
	if err != nil {
		return nil, err
	}
	if err := out.Finalize(); err != nil {
		return nil, fmt.Errorf("convert: finalizing %s host: %w", kind, err)
	}
	return out, nil
}
