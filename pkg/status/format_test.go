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
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

// 🧪 TestFormatEntry tests entry descriptions
func TestFormatEntry(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		isDir       bool
		want        string
		description string
	}{
		{
			name:        "file",
			path:        "src/main.go",
			want:        "📄 src/main.go",
			description: "should show file symbol for files",
		},
		{
			name:        "directory",
			path:        "src",
			isDir:       true,
			want:        "📁 src",
			description: "should show folder symbol for directories",
		},
		{
			name:        "empty",
			path:        "",
			want:        "⏳ Downloading",
			description: "should show download state before the first entry",
		},
		{
			name:        "long_path",
			path:        "a/very/deeply/nested/directory/tree/with/file.txt",
			want:        "📄 …ed/directory/tree/with/file.txt",
			description: "should keep the tail of long paths",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatEntry(tt.path, tt.isDir)
			assert.Equal(t, tt.want, got, tt.description)
		})
	}
}

func TestFormatEntryWidth(t *testing.T) {
	got := FormatEntry("ünïcödé/ünïcödé/ünïcödé/ünïcödé/ünïcödé", false)
	assert.Equal(t, maxEntryWidth+2, utf8.RuneCountInString(got), "truncation should count runes")
}

func TestFormatSummary(t *testing.T) {
	assert.Equal(t, "✅ Extracted 1 file in 1 directory", FormatSummary(1, 1))
	assert.Equal(t, "✅ Extracted 12 files in 0 directories", FormatSummary(12, 0))
}
