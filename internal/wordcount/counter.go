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

// Package wordcount tallies word frequencies in text using a dict.Map.
package wordcount

import (
	"bufio"
	"io"
	"regexp"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/cockroachdb/dict"
)

// maxLineLength bounds the size of a single line handed to Tokenize.
const maxLineLength = 1 << 20

var nonWord = regexp.MustCompile(`\W`)

// Tokenize splits line on whitespace, strips every non-word character
// ([^0-9A-Za-z_]) from each field and lowercases the result. Fields that are
// left empty are dropped.
func Tokenize(line string) []string {
	fields := strings.Fields(line)
	tokens := fields[:0]
	for _, f := range fields {
		if w := strings.ToLower(nonWord.ReplaceAllString(f, "")); w != "" {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

// WordCount is a word and the number of times it occurred.
type WordCount struct {
	Word  string `yaml:"word"`
	Count int    `yaml:"count"`
}

// Counter maintains running frequency counts of tokens.
type Counter struct {
	counts *dict.Map[string, int]
	total  int
}

// NewCounter returns an empty Counter. See dict.New for the meaning of
// initialCapacity.
func NewCounter(initialCapacity int) *Counter {
	return &Counter{
		counts: dict.New[string, int](initialCapacity),
	}
}

// Add records one occurrence of token.
func (c *Counter) Add(token string) {
	if !c.counts.Contains(token) {
		c.counts.Put(token, 0)
	}
	n, _ := c.counts.Get(token)
	c.counts.Put(token, n+1)
	c.total++
}

// Scan tokenizes every line read from r and adds the tokens to the counter.
// It returns the number of tokens added.
func (c *Counter) Scan(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	var n int
	for scanner.Scan() {
		for _, token := range Tokenize(scanner.Text()) {
			c.Add(token)
			n++
		}
	}
	if err := scanner.Err(); err != nil {
		return n, errors.Wrap(err, "failed to scan input")
	}
	return n, nil
}

// Count returns the number of occurrences of word. Lookups are case
// insensitive.
func (c *Counter) Count(word string) int {
	n, _ := c.counts.Get(strings.ToLower(word))
	return n
}

// Total returns the number of tokens added.
func (c *Counter) Total() int {
	return c.total
}

// Distinct returns the number of distinct tokens added.
func (c *Counter) Distinct() int {
	return c.counts.Len()
}

// Capacity returns the number of slots in the underlying table.
func (c *Counter) Capacity() int {
	return c.counts.Cap()
}

// Top returns the n most frequent words ordered by descending count, ties
// broken alphabetically. If n <= 0 every word is returned.
func (c *Counter) Top(n int) ([]WordCount, error) {
	all := make([]WordCount, 0, c.counts.Len())
	for it := c.counts.Keys(); it.HasNext(); {
		word, err := it.Next()
		if err != nil {
			return nil, errors.Wrap(err, "failed to iterate words")
		}
		count, _ := c.counts.Get(word)
		all = append(all, WordCount{Word: word, Count: count})
	}

	slices.SortFunc(all, func(a, b WordCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Word, b.Word)
	})
	if n > 0 && n < len(all) {
		all = all[:n]
	}
	return all, nil
}
