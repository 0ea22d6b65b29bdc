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
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

func newConfigTestCmd() *cobra.Command {
	c := &cobra.Command{Use: "test"}
	c.Flags().StringP("stringency", "s", "cdna", "")
	c.Flags().BoolP("both-strands", "b", true, "")
	c.Flags().IntP("min-score", "m", 20, "")
	c.Flags().BoolP("extend-through-n", "N", false, "")
	c.Flags().IntP("max-blocks", "B", 0, "")
	c.Flags().BoolP("all", "a", false, "")
	return c
}

func writeConfig(t *testing.T, data string) string {
	file := filepath.Join(t.TempDir(), "fuzzyfind.toml")
	if err := os.WriteFile(file, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	return file
}

func TestApplyConfig(t *testing.T) {
	file := writeConfig(t, `
stringency = "tight"
min-score = 50
extend-through-n = true
`)

	c := newConfigTestCmd()
	if err := c.Flags().Set("min-score", "30"); err != nil {
		t.Fatal(err)
	}

	n, err := applyConfig(c, file)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if n != 2 {
		t.Errorf("expected 2 flags set, returned %d", n)
	}

	if v := getFlagString(c, "stringency"); v != "tight" {
		t.Errorf("stringency: expected tight, returned %s", v)
	}
	if v := getFlagInt(c, "min-score"); v != 30 {
		t.Errorf("min-score given in the command line should be kept: %d", v)
	}
	if !getFlagBool(c, "extend-through-n") {
		t.Errorf("extend-through-n should be true")
	}
	if !getFlagBool(c, "both-strands") {
		t.Errorf("both-strands absent from the config file should keep the default value")
	}
}

func TestApplyConfigErrors(t *testing.T) {
	file := writeConfig(t, `unknown-key = 1`)
	if _, err := applyConfig(newConfigTestCmd(), file); err == nil {
		t.Errorf("unknown keys should be rejected")
	}

	file = writeConfig(t, `min-score = "high"`)
	if _, err := applyConfig(newConfigTestCmd(), file); err == nil {
		t.Errorf("values of wrong types should be rejected")
	}

	if _, err := applyConfig(newConfigTestCmd(), filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Errorf("missing config file should be reported")
	}
}
