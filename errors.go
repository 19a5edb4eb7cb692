// Copyright 2024 The Cockroach Authors
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

package dict

import "github.com/pkg/errors"

var (
	// ErrIteratorExhausted is returned by Next when HasNext reports false.
	ErrIteratorExhausted = errors.New("dict: iterator exhausted")
	// ErrUnsupportedOperation is returned by ValueIterator.Remove.
	ErrUnsupportedOperation = errors.New("dict: unsupported operation")
	// ErrInvalidKey is the panic value (possibly wrapped) raised when a nil
	// key is passed to a keyed operation.
	ErrInvalidKey = errors.New("dict: invalid key")
)
