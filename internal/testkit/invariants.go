package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"mirror/internal/meta"
	"mirror/internal/metaeval"
	"mirror/internal/metaobj"
)

// CheckSequenceInvariants runs the enumeration invariants on one sequence:
// 1) GetSize equals the length of UnpackSequence
// 2) GetElement succeeds for every index below GetSize and yields a
//    metaobject reflecting the same entity as the unpacked element
// 3) GetElement at GetSize fails
// 4) exposing protected, then private members never shrinks the sequence
//    and keeps the original elements in their relative order
func CheckSequenceInvariants(ev *metaeval.Evaluator, seq metaobj.ID) error {
	if ev == nil {
		return fmt.Errorf("nil evaluator")
	}
	size, err := ev.Size(seq)
	if err != nil {
		return fmt.Errorf("GetSize: %w", err)
	}
	all, err := ev.Elements(seq)
	if err != nil {
		return fmt.Errorf("UnpackSequence: %w", err)
	}

	// 1) size matches unpack
	if len(all) != size {
		return fmt.Errorf("GetSize=%d but UnpackSequence has %d elements", size, len(all))
	}

	// 2) every index below size is valid
	for i := range size {
		idx, err := safecast.Conv[uint64](i)
		if err != nil {
			return fmt.Errorf("index overflow: %w", err)
		}
		el, err := ev.GetElement(seq, idx)
		if err != nil {
			return fmt.Errorf("GetElement(%d) of %d: %w", i, size, err)
		}
		same, err := ev.ReflectsSame(el, all[i])
		if err != nil {
			return fmt.Errorf("ReflectsSame: %w", err)
		}
		if !same {
			return fmt.Errorf("GetElement(%d) and UnpackSequence[%d] reflect different entities", i, i)
		}
	}

	// 3) size itself is out of range
	if _, err := ev.GetElement(seq, uint64(size)); err == nil { // #nosec G115 -- size is a length
		return fmt.Errorf("GetElement(%d) succeeded past the end", size)
	}

	// 4) monotonic exposure
	prev := all
	for _, op := range []meta.Op{meta.OpExposeProtected, meta.OpExposePrivate} {
		v, err := ev.Unary(op, seq)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		wider, err := ev.Elements(v.Meta)
		if err != nil {
			return fmt.Errorf("UnpackSequence after %s: %w", op, err)
		}
		if len(wider) < len(prev) {
			return fmt.Errorf("%s shrank the sequence from %d to %d", op, len(prev), len(wider))
		}
		if err := isSubsequence(ev, prev, wider); err != nil {
			return fmt.Errorf("after %s: %w", op, err)
		}
		prev = wider
	}
	return nil
}

func isSubsequence(ev *metaeval.Evaluator, sub, seq []metaobj.ID) error {
	j := 0
	for _, want := range sub {
		for ; j < len(seq); j++ {
			same, err := ev.ReflectsSame(want, seq[j])
			if err != nil {
				return err
			}
			if same {
				break
			}
		}
		if j == len(seq) {
			return fmt.Errorf("element %d is missing or out of order", want)
		}
		j++
	}
	return nil
}
