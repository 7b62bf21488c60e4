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

// TestDecodeAcceptsDuplicateExportNames confirms that a module with two
// exports sharing a name decodes successfully — uniqueness is a whole-module
// validation concern, not a decode-time one.
func TestDecodeAcceptsDuplicateExportNames(t *testing.T) {
	b := newModuleBuilder()
	b.section(secType, vec(1, funcType(nil, nil)))
	b.section(secFunction, vec(1, uleb(0)))
	entry := append(name("dup"), 0x00, 0x00)
	b.section(secExport, vec(2, entry, entry))
	body := []byte{0x00, byte(OpEnd)}
	codeEntry := append(uleb(uint64(len(body))), body...)
	b.section(secCode, vec(1, codeEntry))

	m, err := Decode(b.bytes())
	require.NoError(t, err)
	require.Len(t, m.Exports, 2)
}

func TestValidateRejectsDuplicateExportNames(t *testing.T) {
	m := &Module{
		Types: []FunctionType{{}},
		Funcs: []Function{{TypeIndex: 0, Body: []Instruction{}}},
		Exports: []Export{
			{Name: "dup", Kind: ExportFunc, Index: 0},
			{Name: "dup", Kind: ExportFunc, Index: 0},
		},
	}
	err := Validate(m)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}
