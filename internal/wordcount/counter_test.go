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

package wordcount

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const alice = `Alice was beginning to get very tired of sitting by her sister on the
bank, and of having nothing to do: once or twice she had peeped into the
book her sister was reading, but it had no pictures or conversations in
it, 'and what is the use of a book,' thought Alice 'without pictures or
conversations?' -- The White Rabbit! The RABBIT.
`

func TestTokenize(t *testing.T) {
	testCases := []struct {
		line     string
		expected []string
	}{
		{"", []string{}},
		{"   ", []string{}},
		{"Alice", []string{"alice"}},
		{"'Alice!'  was", []string{"alice", "was"}},
		{"don't -- stop", []string{"dont", "stop"}},
		{"snake_case\tTabs\nNewline", []string{"snake_case", "tabs", "newline"}},
		{"42 times", []string{"42", "times"}},
	}
	for _, c := range testCases {
		t.Run(c.line, func(t *testing.T) {
			if diff := cmp.Diff(c.expected, Tokenize(c.line), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", c.line, diff)
			}
		})
	}
}

func TestCounterAdd(t *testing.T) {
	c := NewCounter(0)
	for _, token := range []string{"a", "b", "a"} {
		c.Add(token)
	}
	require.Equal(t, 2, c.Count("a"))
	require.Equal(t, 1, c.Count("b"))
	require.Equal(t, 0, c.Count("c"))
	require.Equal(t, 3, c.Total())
	require.Equal(t, 2, c.Distinct())
}

func TestCounterScan(t *testing.T) {
	c := NewCounter(0)
	n, err := c.Scan(strings.NewReader(alice))
	require.NoError(t, err)
	require.Equal(t, 62, n)
	require.Equal(t, n, c.Total())

	assert.Equal(t, 2, c.Count("alice"))
	assert.Equal(t, 2, c.Count("Rabbit"))
	assert.Equal(t, 5, c.Count("the"))
	assert.Equal(t, 3, c.Count("or"))
	assert.Equal(t, 0, c.Count("hatter"))
}

func TestCounterGrows(t *testing.T) {
	c := NewCounter(0)
	require.Equal(t, 101, c.Capacity())
	var buf strings.Builder
	for i := 0; i < 51; i++ {
		buf.WriteString(strings.Repeat("x", i+1))
		buf.WriteByte(' ')
	}
	_, err := c.Scan(strings.NewReader(buf.String()))
	require.NoError(t, err)
	require.Equal(t, 51, c.Distinct())
	require.Equal(t, 211, c.Capacity())
	for i := 0; i < 51; i++ {
		require.Equal(t, 1, c.Count(strings.Repeat("x", i+1)))
	}
}

func TestCounterTop(t *testing.T) {
	c := NewCounter(0)
	_, err := c.Scan(strings.NewReader("b a c b a b d"))
	require.NoError(t, err)

	top, err := c.Top(3)
	require.NoError(t, err)
	expected := []WordCount{{"b", 3}, {"a", 2}, {"c", 1}}
	if diff := cmp.Diff(expected, top); diff != "" {
		t.Errorf("Top(3) mismatch (-want +got):\n%s", diff)
	}

	all, err := c.Top(0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	require.Equal(t, WordCount{"d", 1}, all[3])
}

func TestReport(t *testing.T) {
	c := NewCounter(0)
	_, err := c.Scan(strings.NewReader(alice))
	require.NoError(t, err)

	r, err := c.Report([]string{"alice", "rabbit", "hatter"}, 2)
	require.NoError(t, err)
	expected := Report{
		Tokens:   62,
		Distinct: c.Distinct(),
		Words:    []WordCount{{"alice", 2}, {"rabbit", 2}, {"hatter", 0}},
		Top:      []WordCount{{"the", 5}, {"of", 3}},
	}
	if diff := cmp.Diff(expected, r); diff != "" {
		t.Errorf("Report mismatch (-want +got):\n%s", diff)
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, r.WriteText(&buf))
		out := buf.String()
		assert.Contains(t, out, "Number of words: 62\n")
		assert.Contains(t, out, "Number times of alice: 2\n")
		assert.Contains(t, out, "Number times of hatter: 0\n")
		assert.Contains(t, out, "Top 2:\n")
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, r.WriteYAML(&buf))
		var decoded Report
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		if diff := cmp.Diff(r, decoded); diff != "" {
			t.Errorf("YAML round trip mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("no-top", func(t *testing.T) {
		r, err := c.Report(nil, 0)
		require.NoError(t, err)
		require.Empty(t, r.Top)
		require.Empty(t, r.Words)
	})
}

func TestReportTextLargeCounts(t *testing.T) {
	r := Report{Tokens: 1234567, Distinct: 8910}
	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf))
	assert.Equal(t, "Number of words: 1,234,567\nDistinct words: 8,910\n", buf.String())
}
