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

// NextPrime returns the smallest prime >= n, with the exception that 2 is
// never returned: even inputs are first advanced to the next odd number and
// only odd candidates are tested. NextPrime(n) for n <= 1 returns 3.
func NextPrime(n int) int {
	if n < 3 {
		return 3
	}
	if n%2 == 0 {
		n++
	}
	for !isPrime(n) {
		n += 2
	}
	return n
}

// isPrime reports whether n is prime using trial division by odd divisors up
// to sqrt(n).
func isPrime(n int) bool {
	switch {
	case n == 2 || n == 3:
		return true
	case n < 2 || n%2 == 0:
		return false
	}
	for d := 3; d*d <= n; d += 2 {
		if n%d == 0 {
			return false
		}
	}
	return true
}
