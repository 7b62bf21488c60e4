// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package wasmlite

// NullReference is the sentinel funcref value denoting an uninitialized
// table slot.
const NullReference int32 = -1

// Table is a table instance: a resizable array of function addresses (or
// NullReference). Wasm 1.0 has exactly one element kind, funcref.
type Table struct {
	limits   Limits
	elements []int32
}

func newTable(t TableType) *Table {
	elems := make([]int32, t.Limits.Min)
	for i := range elems {
		elems[i] = NullReference
	}
	return &Table{limits: t.Limits, elements: elems}
}

func (t *Table) Size() uint32 { return uint32(len(t.elements)) }

// Grow grows the table by delta entries, filling new slots with
// NullReference, returning the previous size or -1 on failure.
func (t *Table) Grow(delta uint32) int32 {
	prev := t.Size()
	newSize := uint64(prev) + uint64(delta)
	if t.limits.Max != nil && newSize > uint64(*t.limits.Max) {
		return -1
	}
	if newSize > math_MaxUint32 {
		return -1
	}
	grown := make([]int32, newSize)
	copy(grown, t.elements)
	for i := prev; uint64(i) < newSize; i++ {
		grown[i] = NullReference
	}
	t.elements = grown
	return int32(prev)
}

const math_MaxUint32 = 1<<32 - 1

func (t *Table) Get(i uint32) (int32, error) {
	if i >= t.Size() {
		return 0, trap(TrapTableOutOfBounds)
	}
	return t.elements[i], nil
}

func (t *Table) Set(i uint32, funcAddr int32) error {
	if i >= t.Size() {
		return trap(TrapTableOutOfBounds)
	}
	t.elements[i] = funcAddr
	return nil
}

// fits reports whether len(funcAddrs) entries starting at offset lie
// within the table's current bounds, without mutating it.
func (t *Table) fits(offset uint32, n int) bool {
	end := uint64(offset) + uint64(n)
	return end <= uint64(t.Size())
}

// Init copies func addresses into the table starting at offset, used by
// active element-segment initialization at instantiation time.
func (t *Table) Init(offset uint32, funcAddrs []int32) error {
	if !t.fits(offset, len(funcAddrs)) {
		return trap(TrapElementSegmentOutOfBounds)
	}
	copy(t.elements[offset:], funcAddrs)
	return nil
}
