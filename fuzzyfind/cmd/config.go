// Copyright © 2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"os"
	"strconv"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// AlignConfig holds default values of the flags of "fuzzyfind align".
// A nil field is absent from the config file.
type AlignConfig struct {
	Stringency     *string `toml:"stringency"`
	BothStrands    *bool   `toml:"both-strands"`
	MinScore       *int    `toml:"min-score"`
	ExtendThroughN *bool   `toml:"extend-through-n"`
	MaxBlocks      *int    `toml:"max-blocks"`
	All            *bool   `toml:"all"`
}

// readAlignConfig reads a TOML config file, "~" is expanded.
// Unknown keys are rejected.
func readAlignConfig(file string) (*AlignConfig, error) {
	file, err := homedir.Expand(file)
	if err != nil {
		return nil, errors.Wrapf(err, "expanding path: %s", file)
	}

	fh, err := os.Open(file)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config file")
	}
	defer fh.Close()

	cfg := &AlignConfig{}
	dec := toml.NewDecoder(fh)
	dec.DisallowUnknownFields()
	if err = dec.Decode(cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config file: %s", file)
	}
	return cfg, nil
}

// values returns flag values of present keys.
func (c *AlignConfig) values() map[string]string {
	m := make(map[string]string, 6)
	if c.Stringency != nil {
		m["stringency"] = *c.Stringency
	}
	if c.BothStrands != nil {
		m["both-strands"] = strconv.FormatBool(*c.BothStrands)
	}
	if c.MinScore != nil {
		m["min-score"] = strconv.Itoa(*c.MinScore)
	}
	if c.ExtendThroughN != nil {
		m["extend-through-n"] = strconv.FormatBool(*c.ExtendThroughN)
	}
	if c.MaxBlocks != nil {
		m["max-blocks"] = strconv.Itoa(*c.MaxBlocks)
	}
	if c.All != nil {
		m["all"] = strconv.FormatBool(*c.All)
	}
	return m
}

// applyConfig sets flags from a config file, skipping flags given in the command line.
// It returns the number of flags set.
func applyConfig(cmd *cobra.Command, file string) (int, error) {
	cfg, err := readAlignConfig(file)
	if err != nil {
		return 0, err
	}

	var n int
	for name, value := range cfg.values() {
		if cmd.Flags().Changed(name) {
			continue
		}
		if err = cmd.Flags().Set(name, value); err != nil {
			return n, errors.Wrapf(err, "invalid value of %s in config file", name)
		}
		n++
	}
	return n, nil
}
