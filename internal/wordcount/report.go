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
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Report summarizes a Counter.
type Report struct {
	Tokens   int         `yaml:"tokens"`
	Distinct int         `yaml:"distinct"`
	Words    []WordCount `yaml:"words"`
	Top      []WordCount `yaml:"top,omitempty"`
}

// Report builds a Report containing the counts of the requested words and
// the top most frequent words. No top section is produced if top <= 0.
func (c *Counter) Report(words []string, top int) (Report, error) {
	r := Report{
		Tokens:   c.Total(),
		Distinct: c.Distinct(),
		Words:    make([]WordCount, 0, len(words)),
	}
	for _, w := range words {
		r.Words = append(r.Words, WordCount{Word: w, Count: c.Count(w)})
	}
	if top > 0 {
		var err error
		if r.Top, err = c.Top(top); err != nil {
			return Report{}, err
		}
	}
	return r, nil
}

// WriteText writes r in a human readable form.
func (r Report) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Number of words: %s\n", humanize.Comma(int64(r.Tokens))); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Distinct words: %s\n", humanize.Comma(int64(r.Distinct))); err != nil {
		return err
	}
	for _, wc := range r.Words {
		if _, err := fmt.Fprintf(w, "Number times of %s: %s\n", wc.Word, humanize.Comma(int64(wc.Count))); err != nil {
			return err
		}
	}
	if len(r.Top) > 0 {
		if _, err := fmt.Fprintf(w, "Top %d:\n", len(r.Top)); err != nil {
			return err
		}
		for i, wc := range r.Top {
			if _, err := fmt.Fprintf(w, "%4d. %-20s %s\n", i+1, wc.Word, humanize.Comma(int64(wc.Count))); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteYAML writes r as a YAML document.
func (r Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return errors.Wrap(err, "failed to encode report")
	}
	return enc.Close()
}
