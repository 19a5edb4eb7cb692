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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/cockroachdb/dict/internal/wordcount"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestCmdText(t *testing.T) {
	path := writeFile(t, "words.txt", "a b\na, A!")
	out, err := execute(t, "", path, "--words", "a,b,c")
	require.NoError(t, err)
	assert.Equal(t, `Number of words: 4
Distinct words: 2
Number times of a: 3
Number times of b: 1
Number times of c: 0
`, out)
}

func TestCmdDefaultWords(t *testing.T) {
	out, err := execute(t, "Alice saw the White Rabbit. Alice!")
	require.NoError(t, err)
	assert.Contains(t, out, "Number times of alice: 2\n")
	assert.Contains(t, out, "Number times of rabbit: 1\n")
	assert.Contains(t, out, "Number times of hatter: 0\n")
}

func TestCmdMultipleFiles(t *testing.T) {
	first := writeFile(t, "first.txt", "mad hatter")
	second := writeFile(t, "second.txt", "mad march hare")
	out, err := execute(t, "", first, second, "-w", "mad,hare", "-t", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Number of words: 5\n")
	assert.Contains(t, out, "Number times of mad: 2\n")
	assert.Contains(t, out, "Top 1:\n")
}

func TestCmdYAML(t *testing.T) {
	for _, test := range []struct {
		name  string
		args  []string
		setup func(t *testing.T)
	}{
		{"flag", []string{"--format", "yaml", "-w", "b", "--top", "2"}, func(*testing.T) {}},
		{"env", []string{"-w", "b", "--top", "2"}, func(t *testing.T) {
			t.Setenv("WORDFREQ_FORMAT", "yaml")
		}},
		{"config", nil, func(t *testing.T) {}},
	} {
		t.Run(test.name, func(t *testing.T) {
			test.setup(t)
			args := test.args
			if args == nil {
				conf, err := yaml.Marshal(map[string]any{
					"format": "yaml",
					"words":  []string{"b"},
					"top":    2,
				})
				require.NoError(t, err)
				args = []string{"--conf", writeFile(t, "conf.yaml", string(conf))}
			}

			out, err := execute(t, "a b c b", args...)
			require.NoError(t, err)

			var report wordcount.Report
			require.NoError(t, yaml.Unmarshal([]byte(out), &report))
			assert.Equal(t, wordcount.Report{
				Tokens:   4,
				Distinct: 3,
				Words:    []wordcount.WordCount{{Word: "b", Count: 2}},
				Top:      []wordcount.WordCount{{Word: "b", Count: 2}, {Word: "a", Count: 1}},
			}, report)
		})
	}
}

func TestCmdMissingFiles(t *testing.T) {
	dir := t.TempDir()
	missing1 := filepath.Join(dir, "missing1.txt")
	missing2 := filepath.Join(dir, "missing2.txt")

	out, err := execute(t, "", missing1, missing2)
	require.Error(t, err)
	assert.Empty(t, out)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Contains(t, err.Error(), missing1)
	assert.Contains(t, err.Error(), missing2)
}

func TestCmdInvalidConfig(t *testing.T) {
	for _, test := range []struct {
		name string
		args []string
	}{
		{"format", []string{"--format", "xml"}},
		{"capacity", []string{"--capacity=-1"}},
		{"log-level", []string{"--log-level", "verbose"}},
		{"conf", []string{"--conf", filepath.Join(t.TempDir(), "missing.yaml")}},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := execute(t, "a", test.args...)
			assert.Error(t, err)
		})
	}
}
