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

// Config holds resource limits that a Runtime carries (see
// Runtime.WithConfig). The interpreter does not read a Runtime's Config:
// every invocation uses DefaultConfig().MaxCallStackDepth as its call-depth
// limit, whatever Config the Runtime holds.
type Config struct {
	// MaxCallStackDepth is the greatest number of nested activation
	// records permitted before a call traps with TrapCallStackExhausted.
	MaxCallStackDepth int

	// MaxValueStackDepth is a bound on the operand stack. The interpreter
	// does not enforce it.
	MaxValueStackDepth int

	// CallStackPreallocationSize is an initial-capacity hint for the frame
	// stack. The interpreter does not use it.
	CallStackPreallocationSize int
}

// DefaultConfig returns the configuration used when a Runtime is created
// without an explicit override.
func DefaultConfig() Config {
	return Config{
		MaxCallStackDepth:          1000,
		MaxValueStackDepth:         1 << 16,
		CallStackPreallocationSize: 64,
	}
}
