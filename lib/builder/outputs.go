// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

package builder

// NamedOutputs holds one value per output attribute of the
// instrumentation script. There are always exactly these two slots;
// callers rely on both being present.
//
// The element type changes as a build progresses: *nix.StorePath while
// stderr is being folded (nil until the attribute is seen),
// nix.StorePath once both derivations are confirmed, and the realized
// path after phase 2.
type NamedOutputs[T any] struct {
	// Primary is the user's shell derivation as evaluated.
	Primary T `json:"primary"`

	// PrimaryGCRooted is the primary derivation rewritten so that its
	// output is safe to pin as a garbage-collection root.
	PrimaryGCRooted T `json:"primary_gc_rooted"`
}

// AttrNames returns the attribute name of each slot, as the
// instrumentation script spells it in its trace lines.
func AttrNames() NamedOutputs[string] {
	return NamedOutputs[string]{
		Primary:         "primary",
		PrimaryGCRooted: "primary_gc_rooted",
	}
}

// Pair is one slot of two zipped NamedOutputs.
type Pair[T, U any] struct {
	First  T
	Second U
}

// Map applies function to each slot.
func Map[T, U any](outputs NamedOutputs[T], function func(T) U) NamedOutputs[U] {
	return NamedOutputs[U]{
		Primary:         function(outputs.Primary),
		PrimaryGCRooted: function(outputs.PrimaryGCRooted),
	}
}

// MapErr applies function to each slot and returns the first error.
// Primary is evaluated first; when it fails PrimaryGCRooted is not
// evaluated at all.
func MapErr[T, U any](outputs NamedOutputs[T], function func(T) (U, error)) (NamedOutputs[U], error) {
	primary, err := function(outputs.Primary)
	if err != nil {
		return NamedOutputs[U]{}, err
	}
	primaryGCRooted, err := function(outputs.PrimaryGCRooted)
	if err != nil {
		return NamedOutputs[U]{}, err
	}
	return NamedOutputs[U]{Primary: primary, PrimaryGCRooted: primaryGCRooted}, nil
}

// Zip pairs up corresponding slots.
func Zip[T, U any](left NamedOutputs[T], right NamedOutputs[U]) NamedOutputs[Pair[T, U]] {
	return NamedOutputs[Pair[T, U]]{
		Primary:         Pair[T, U]{First: left.Primary, Second: right.Primary},
		PrimaryGCRooted: Pair[T, U]{First: left.PrimaryGCRooted, Second: right.PrimaryGCRooted},
	}
}
