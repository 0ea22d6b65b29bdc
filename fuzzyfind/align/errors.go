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

package align

import "github.com/pkg/errors"

// ErrInvalidRange means a needle or haystack range is reversed or out of
// the bounds of its sequence.
var ErrInvalidRange = errors.New("fuzzyfind: invalid sequence range")

// ErrInvalidStringency means a stringency value outside of Exact, Cdna, Tight and Loose.
var ErrInvalidStringency = errors.New("fuzzyfind: invalid stringency")

// ErrNotLowerCase means the needle or haystack contains upper-case letters.
var ErrNotLowerCase = errors.New("fuzzyfind: sequences should be in lower case")

// ErrResourceExhausted means a search needed more blocks than Options.MaxBlocks.
var ErrResourceExhausted = errors.New("fuzzyfind: too many alignment blocks")
