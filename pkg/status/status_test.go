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
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBar(t *testing.T) {
	var buf bytes.Buffer
	bar := NewBar(&buf, 1024)

	n, err := bar.Write(make([]byte, 1024))
	require.NoError(t, err, "write should succeed")
	assert.Equal(t, 1024, n, "write should consume everything")

	bar.Describe(FormatEntry("README.md", false))
	require.NoError(t, bar.Finish(FormatSummary(1, 0)), "finish should succeed")

	assert.NotEmpty(t, buf.String(), "bar should render to its writer")
}

func TestBarUnknownTotal(t *testing.T) {
	var buf bytes.Buffer
	bar := NewBar(&buf, -1)

	_, err := bar.Write([]byte("some bytes"))
	require.NoError(t, err, "write should succeed")
	assert.NoError(t, bar.Finish("done"), "spinner should finish cleanly")
}

func TestNoop(t *testing.T) {
	r := Noop()
	n, err := r.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n, "noop should report full writes")
	r.Describe("ignored")
	assert.NoError(t, r.Finish("ignored"))
}

func TestForTerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, Interactive(f), "regular files are not terminals")
	assert.False(t, Interactive(nil), "nil file is not a terminal")
	assert.Equal(t, Noop(), ForTerminal(f)(100), "non terminal should get a silent reporter")

	var buf bytes.Buffer
	assert.False(t, Interactive(&buf), "buffers are not terminals")
	assert.Equal(t, Noop(), ForTerminal(&buf)(-1), "buffer should get a silent reporter")
	assert.Empty(t, buf.String())
}
