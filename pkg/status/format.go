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
	"unicode/utf8"
)

// maxEntryWidth keeps the bar on a single line for deep paths
const maxEntryWidth = 32

// FormatEntry formats the description shown while an entry is written
func FormatEntry(path string, isDir bool) string {
	if path == "" {
		return "⏳ Downloading"
	}

	if n := utf8.RuneCountInString(path); n > maxEntryWidth {
		runes := []rune(path)
		path = "…" + string(runes[n-maxEntryWidth+1:])
	}

	if isDir {
		return fmt.Sprintf("📁 %s", path)
	}
	return fmt.Sprintf("📄 %s", path)
}

// FormatSummary formats the final description of an extraction
func FormatSummary(files, dirs int) string {
	return fmt.Sprintf("✅ Extracted %d %s in %d %s", files, plural(files, "file"), dirs, plural(dirs, "directory"))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	if word == "directory" {
		return "directories"
	}
	return word + "s"
}
