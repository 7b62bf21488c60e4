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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// moduleBuilder assembles a binary module byte-by-byte, section by
// section, so tests can exercise the decoder against real bytes without a
// text-format toolchain.
type moduleBuilder struct {
	sections []byte
}

func newModuleBuilder() *moduleBuilder { return &moduleBuilder{} }

func uleb(v uint64) []byte { return encodeULEB128(nil, v) }

func vec(n int, items ...[]byte) []byte {
	out := uleb(uint64(n))
	for _, it := range items {
		out = append(out, it...)
	}
	return out
}

func (b *moduleBuilder) section(id byte, content []byte) *moduleBuilder {
	b.sections = append(b.sections, id)
	b.sections = append(b.sections, uleb(uint64(len(content)))...)
	b.sections = append(b.sections, content...)
	return b
}

func (b *moduleBuilder) bytes() []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	return append(out, b.sections...)
}

func name(s string) []byte {
	return append(uleb(uint64(len(s))), []byte(s)...)
}

// funcType encodes a function type: params -> results, both NumberType
// bytes (0x7F i32, 0x7E i64, 0x7D f32, 0x7C f64).
func funcType(params, results []byte) []byte {
	out := []byte{0x60}
	out = append(out, vec(len(params), byteItems(params)...)...)
	out = append(out, vec(len(results), byteItems(results)...)...)
	return out
}

func byteItems(bs []byte) [][]byte {
	items := make([][]byte, len(bs))
	for i, b := range bs {
		items[i] = []byte{b}
	}
	return items
}

// addModuleBytes builds:
//
//	(type (func (param i32 i32) (result i32)))
//	(func (type 0) local.get 0 local.get 1 i32.add)
//	(export "add" (func 0))
func addModuleBytes() []byte {
	b := newModuleBuilder()
	b.section(secType, vec(1, funcType([]byte{0x7F, 0x7F}, []byte{0x7F})))
	b.section(secFunction, vec(1, uleb(0)))
	exportEntry := append(name("add"), 0x00, 0x00)
	b.section(secExport, vec(1, exportEntry))
	body := []byte{0x00, 0x20, 0x00, 0x20, 0x01, byte(OpI32Add), byte(OpEnd)}
	codeEntry := append(uleb(uint64(len(body))), body...)
	b.section(secCode, vec(1, codeEntry))
	return b.bytes()
}

func TestDecodeAddModule(t *testing.T) {
	m, err := Decode(addModuleBytes())
	require.NoError(t, err)
	require.Len(t, m.Types, 1)
	require.Len(t, m.Funcs, 1)
	require.Len(t, m.Exports, 1)
	require.Equal(t, "add", m.Exports[0].Name)
	require.Equal(t, ExportFunc, m.Exports[0].Kind)

	require.NoError(t, Validate(m))
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	data := append([]byte{0xDE, 0xAD, 0xBE, 0xEF}, addModuleBytes()[4:]...)
	_, err := Decode(data)
	require.Error(t, err)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
}

func TestDecodeRejectsOutOfOrderSections(t *testing.T) {
	b := newModuleBuilder()
	b.section(secExport, vec(0))
	b.section(secType, vec(0))
	_, err := Decode(b.bytes())
	require.Error(t, err)
}

func TestDecodeRejectsDuplicateSection(t *testing.T) {
	b := newModuleBuilder()
	b.section(secType, vec(0))
	b.section(secType, vec(0))
	_, err := Decode(b.bytes())
	require.Error(t, err)
}

func TestDecodeAllowsRepeatedCustomSections(t *testing.T) {
	b := newModuleBuilder()
	b.section(secCustom, append(name("a"), []byte("hi")...))
	b.section(secType, vec(1, funcType(nil, nil)))
	b.section(secCustom, append(name("b"), []byte("there")...))
	m, err := Decode(b.bytes())
	require.NoError(t, err)
	require.Len(t, m.CustomSections, 2)
	require.Equal(t, "a", m.CustomSections[0].Name)
	require.Equal(t, "b", m.CustomSections[1].Name)
}

// TestDecodeRoundTrip covers the round-trip property: re-encoding a
// canonical module and decoding it again yields the same AST shape.
func TestDecodeRoundTrip(t *testing.T) {
	data := addModuleBytes()
	m1, err := Decode(data)
	require.NoError(t, err)

	reencoded := newModuleBuilder()
	reencoded.section(secType, vec(1, funcType([]byte{0x7F, 0x7F}, []byte{0x7F})))
	reencoded.section(secFunction, vec(1, uleb(0)))
	exportEntry := append(name("add"), 0x00, 0x00)
	reencoded.section(secExport, vec(1, exportEntry))
	body := []byte{0x00, 0x20, 0x00, 0x20, 0x01, byte(OpI32Add), byte(OpEnd)}
	codeEntry := append(uleb(uint64(len(body))), body...)
	reencoded.section(secCode, vec(1, codeEntry))

	m2, err := Decode(reencoded.bytes())
	require.NoError(t, err)
	require.Equal(t, m1.Exports, m2.Exports)
	require.Equal(t, len(m1.Types), len(m2.Types))
}
