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

import (
	"hash/maphash"
	"math/rand/v2"
	"reflect"

	"github.com/zeebo/xxh3"
)

type hashFn[K comparable] func(key *K, seed uintptr) uintptr

// comparableSeed keys maphash.Comparable for every non-string Map in the
// process. The per-map seed is mixed in on top of it.
var comparableSeed = maphash.MakeSeed()

// getDefaultHasher returns the hash function used when no WithHash option is
// supplied. String keys are hashed with XXH3, which is what the word-oriented
// workloads this package is tuned for spend most of their time on. All other
// comparable keys go through maphash.Comparable, which agrees with == for
// every comparable type.
func getDefaultHasher[K comparable]() hashFn[K] {
	var zero K
	if _, ok := any(zero).(string); ok {
		return func(key *K, seed uintptr) uintptr {
			return uintptr(xxh3.HashStringSeed(any(*key).(string), uint64(seed)))
		}
	}
	return func(key *K, seed uintptr) uintptr {
		return uintptr(maphash.Comparable(comparableSeed, *key) ^ uint64(seed))
	}
}

// newSeed returns a random per-map hash seed.
func newSeed() uintptr {
	return uintptr(rand.Uint64())
}

// nilableKey reports whether the zero value of K is a nil reference, in
// which case a zero key is rejected as invalid.
func nilableKey[K comparable]() bool {
	switch reflect.TypeFor[K]().Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Chan, reflect.UnsafePointer:
		return true
	}
	return false
}

func typeName[K any]() string {
	return reflect.TypeFor[K]().String()
}
