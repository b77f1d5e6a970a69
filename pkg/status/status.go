// Copyright 2025 walteh LLC
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

package status

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// 📈 Reporter receives the raw archive bytes and a description of each entry
type Reporter interface {
	io.Writer
	Describe(msg string)
	Finish(msg string) error
}

// 🏭 Factory builds a Reporter for an archive of the given size. A negative
// size means unknown.
type Factory func(total int64) Reporter

// ForTerminal returns a bar factory when w is a terminal and a silent one
// otherwise. Writers that are not files never get a bar.
func ForTerminal(w io.Writer) Factory {
	if !Interactive(w) {
		return func(int64) Reporter { return Noop() }
	}
	return func(total int64) Reporter { return NewBar(w, total) }
}

// Interactive reports whether w is a file attached to a terminal
func Interactive(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// 📊 Bar is a byte progress bar. An unknown total renders a spinner.
type Bar struct {
	bar *progressbar.ProgressBar
}

var _ Reporter = (*Bar)(nil)

func NewBar(w io.Writer, total int64) *Bar {
	if total <= 0 {
		total = -1
	}

	bar := progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetPredictTime(total > 0),
		progressbar.OptionSetDescription(FormatEntry("", false)),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "#",
			SaucerHead:    ">",
			SaucerPadding: "-",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Bar{bar: bar}
}

func (b *Bar) Write(p []byte) (int, error) {
	return b.bar.Write(p)
}

func (b *Bar) Describe(msg string) {
	b.bar.Describe(msg)
}

func (b *Bar) Finish(msg string) error {
	b.bar.Describe(msg)
	return b.bar.Finish()
}

type noop struct{}

// Noop returns a Reporter that discards everything
func Noop() Reporter { return noop{} }

func (noop) Write(p []byte) (int, error) { return len(p), nil }
func (noop) Describe(string)             {}
func (noop) Finish(string) error         { return nil }
