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

const (
	memPageSize = 65536
	memMaxPages = 1 << 16 // 4GiB address space limit for a Wasm 1.0 memory
)

// Memory is a linear memory instance: a resizable byte array whose size is
// always a whole number of 64KiB pages.
type Memory struct {
	limits Limits
	data   []byte
}

func newMemory(t MemoryType) *Memory {
	return &Memory{
		limits: t.Limits,
		data:   make([]byte, uint64(t.Limits.Min)*memPageSize),
	}
}

// Size returns the current size in pages.
func (m *Memory) Size() uint32 { return uint32(len(m.data) / memPageSize) }

// Grow attempts to grow the memory by delta pages, returning the previous
// size in pages on success or -1 if the growth would exceed the memory's
// declared maximum (or the hard 4GiB address-space ceiling). Growth failure
// is not a trap: callers observe it through memory.grow's -1 result.
func (m *Memory) Grow(delta uint32) int32 {
	prev := m.Size()
	newSize := uint64(prev) + uint64(delta)
	if newSize > memMaxPages {
		return -1
	}
	if m.limits.Max != nil && newSize > uint64(*m.limits.Max) {
		return -1
	}
	m.data = append(m.data, make([]byte, uint64(delta)*memPageSize)...)
	return int32(prev)
}

func (m *Memory) bytesSize() uint64 { return uint64(len(m.data)) }

func (m *Memory) checkBounds(offset uint64, n int) error {
	end := offset + uint64(n)
	if end < offset || end > m.bytesSize() {
		return trap(TrapMemoryOutOfBounds)
	}
	return nil
}

// fits reports whether n bytes starting at offset lie within the
// memory's current bounds, without mutating it.
func (m *Memory) fits(offset uint64, n int) bool {
	end := offset + uint64(n)
	return end >= offset && end <= m.bytesSize()
}

// Read copies n bytes starting at offset into dst.
func (m *Memory) Read(offset uint64, dst []byte) error {
	if err := m.checkBounds(offset, len(dst)); err != nil {
		return err
	}
	copy(dst, m.data[offset:])
	return nil
}

// Write copies src into the memory starting at offset.
func (m *Memory) Write(offset uint64, src []byte) error {
	if err := m.checkBounds(offset, len(src)); err != nil {
		return err
	}
	copy(m.data[offset:], src)
	return nil
}

// Init copies src[srcOffset:srcOffset+n] (a data segment's bytes) into the
// memory at dstOffset, used both by active data-segment initialization at
// instantiation time and, ultimately, the same bounds-checking logic
// exercised there.
func (m *Memory) Init(dstOffset uint64, src []byte, srcOffset, n uint64) error {
	if srcOffset+n < srcOffset || srcOffset+n > uint64(len(src)) {
		return trap(TrapDataSegmentOutOfBounds)
	}
	if err := m.checkBounds(dstOffset, int(n)); err != nil {
		return trap(TrapDataSegmentOutOfBounds)
	}
	copy(m.data[dstOffset:dstOffset+n], src[srcOffset:srcOffset+n])
	return nil
}
