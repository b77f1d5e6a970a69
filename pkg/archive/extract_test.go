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

package archive

import (
	"archive/tar"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

// 🔧 MockReporter is a mock implementation of status.Reporter
type MockReporter struct {
	mock.Mock
	bytes int
}

func (m *MockReporter) Write(p []byte) (int, error) {
	m.bytes += len(p)
	return len(p), nil
}

func (m *MockReporter) Describe(msg string) {
	m.Called(msg)
}

func (m *MockReporter) Finish(msg string) error {
	return m.Called(msg).Error(0)
}

func sampleArchive(t *testing.T) []byte {
	return makeArchive(t,
		dir("octocat-Spoon-Knife-7fd1a60/"),
		file("octocat-Spoon-Knife-7fd1a60/README.md", "# Spoon-Knife\n"),
		dir("octocat-Spoon-Knife-7fd1a60/src/"),
		file("octocat-Spoon-Knife-7fd1a60/src/main.go", "package main\n"),
		dir("octocat-Spoon-Knife-7fd1a60/src/lib/"),
		file("octocat-Spoon-Knife-7fd1a60/src/lib/lib.go", "package lib\n"),
		dir("octocat-Spoon-Knife-7fd1a60/srcx/"),
		file("octocat-Spoon-Knife-7fd1a60/srcx/other.txt", "other\n"),
		dir("octocat-Spoon-Knife-7fd1a60/docs/"),
		file("octocat-Spoon-Knife-7fd1a60/docs/index.md", "docs\n"),
	)
}

func TestRewrite(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		subdir string
		want   string
		wantOK bool
	}{
		{name: "strips_root", path: "repo-abc/README.md", want: "README.md", wantOK: true},
		{name: "nested", path: "repo-abc/src/lib/lib.go", want: "src/lib/lib.go", wantOK: true},
		{name: "directory", path: "repo-abc/src/", want: "src", wantOK: true},
		{name: "dot_prefix", path: "./repo-abc/a.txt", want: "a.txt", wantOK: true},
		{name: "root_itself", path: "repo-abc/", wantOK: false},
		{name: "root_without_slash", path: "repo-abc", wantOK: false},
		{name: "subdir_match", path: "repo-abc/src/main.go", subdir: "src", want: "main.go", wantOK: true},
		{name: "subdir_nested", path: "repo-abc/src/lib/lib.go", subdir: "src/lib", want: "lib.go", wantOK: true},
		{name: "subdir_slashes", path: "repo-abc/src/main.go", subdir: "/src/", want: "main.go", wantOK: true},
		{name: "subdir_itself", path: "repo-abc/src/", subdir: "src", wantOK: false},
		{name: "subdir_outside", path: "repo-abc/README.md", subdir: "src", wantOK: false},
		{name: "subdir_component_prefix", path: "repo-abc/srcx/other.txt", subdir: "src", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Rewrite(tt.path, tt.subdir)
			assert.Equal(t, tt.wantOK, ok, "write decision should match")
			assert.Equal(t, tt.want, got, "rewritten path should match")
		})
	}
}

func readTree(t *testing.T, root string) map[string]string {
	t.Helper()

	tree := map[string]string{}
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil || p == root {
			return err
		}
		rel, _ := filepath.Rel(root, p)
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			tree[rel+"/"] = ""
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		tree[rel] = string(data)
		return nil
	})
	require.NoError(t, err, "walking extracted tree should succeed")
	return tree
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		want      map[string]string
		wantFiles int
		wantDirs  int
	}{
		{
			name: "whole_repository",
			want: map[string]string{
				"README.md":      "# Spoon-Knife\n",
				"src/":           "",
				"src/main.go":    "package main\n",
				"src/lib/":       "",
				"src/lib/lib.go": "package lib\n",
				"srcx/":          "",
				"srcx/other.txt": "other\n",
				"docs/":          "",
				"docs/index.md":  "docs\n",
			},
			wantFiles: 5,
			wantDirs:  4,
		},
		{
			name: "subdir",
			opts: Options{Subdir: "src"},
			want: map[string]string{
				"main.go":    "package main\n",
				"lib/":       "",
				"lib/lib.go": "package lib\n",
			},
			wantFiles: 2,
			wantDirs:  1,
		},
		{
			name: "exclude",
			opts: Options{Exclude: []string{"docs", "**/*.go"}},
			want: map[string]string{
				"README.md":      "# Spoon-Knife\n",
				"src/":           "",
				"src/lib/":       "",
				"srcx/":          "",
				"srcx/other.txt": "other\n",
			},
			wantFiles: 2,
			wantDirs:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "out")

			res, err := Extract(context.Background(), bytes.NewReader(sampleArchive(t)), dest, tt.opts)
			require.NoError(t, err, "extraction should succeed")

			assert.Equal(t, tt.want, readTree(t, dest), "extracted tree should match")
			assert.Equal(t, tt.wantFiles, res.Files, "file count should match")
			assert.Equal(t, tt.wantDirs, res.Dirs, "directory count should match")
			assert.Len(t, res.Written, tt.wantFiles+tt.wantDirs)
		})
	}
}

func TestExtractProgress(t *testing.T) {
	data := makeArchive(t,
		dir("repo-abc/"),
		dir("repo-abc/src/"),
		file("repo-abc/src/main.go", "package main\n"),
	)

	progress := &MockReporter{}
	progress.On("Describe", "📁 src").Once()
	progress.On("Describe", "📄 src/main.go").Once()
	progress.On("Finish", "✅ Extracted 1 file in 1 directory").Return(nil).Once()

	_, err := Extract(context.Background(), bytes.NewReader(data), t.TempDir(), Options{Progress: progress})
	require.NoError(t, err, "extraction should succeed")

	progress.AssertExpectations(t)
	assert.Positive(t, progress.bytes, "compressed bytes should be reported")
}

func TestExtractPreservesMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not preserved on windows")
	}

	data := makeArchive(t, tarEntry{name: "repo-abc/run.sh", body: "#!/bin/sh\n", typ: tar.TypeReg, mode: 0o755})
	dest := t.TempDir()

	_, err := Extract(context.Background(), bytes.NewReader(data), dest, Options{})
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dest, "run.sh"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0o100, "executable bit should survive")
}

func TestExtractSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	data := makeArchive(t,
		file("repo-abc/README.md", "hello"),
		tarEntry{name: "repo-abc/README", typ: tar.TypeSymlink, link: "README.md"},
	)
	dest := t.TempDir()

	_, err := Extract(context.Background(), bytes.NewReader(data), dest, Options{})
	require.NoError(t, err)

	target, err := os.Readlink(filepath.Join(dest, "README"))
	require.NoError(t, err)
	assert.Equal(t, "README.md", target, "symlink should point at its relative target")
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    func(t *testing.T) []byte
		opts    Options
		wantErr error
	}{
		{
			name:    "malformed_gzip",
			data:    func(t *testing.T) []byte { return []byte("<html>not an archive</html>") },
			wantErr: ErrExtract,
		},
		{
			name: "path_escape",
			data: func(t *testing.T) []byte {
				return makeArchive(t, file("repo-abc/../../evil.txt", "boom"))
			},
			wantErr: ErrExtract,
		},
		{
			name: "symlink_escape",
			data: func(t *testing.T) []byte {
				return makeArchive(t, tarEntry{name: "repo-abc/passwd", typ: tar.TypeSymlink, link: "../../etc/passwd"})
			},
			wantErr: ErrExtract,
		},
		{
			name: "absolute_symlink",
			data: func(t *testing.T) []byte {
				return makeArchive(t, tarEntry{name: "repo-abc/passwd", typ: tar.TypeSymlink, link: "/etc/passwd"})
			},
			wantErr: ErrExtract,
		},
		{
			name: "chained_symlinks",
			data: func(t *testing.T) []byte {
				return makeArchive(t,
					tarEntry{name: "repo-abc/a/l", typ: tar.TypeSymlink, link: ".."},
					tarEntry{name: "repo-abc/a/l/b", typ: tar.TypeSymlink, link: ".."},
					file("repo-abc/a/l/b/evil.txt", "boom"),
				)
			},
			wantErr: ErrExtract,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := t.TempDir()
			_, err := Extract(context.Background(), bytes.NewReader(tt.data(t)), dest, tt.opts)
			require.Error(t, err, "extraction should fail")
			assert.True(t, errors.Is(err, tt.wantErr), "error should match %v, got %v", tt.wantErr, err)

			var xerr *ExtractError
			assert.True(t, errors.As(err, &xerr), "error should be an ExtractError")
		})
	}

	_, err := Extract(context.Background(), bytes.NewReader(sampleArchive(t)), t.TempDir(), Options{Exclude: []string{"[bad"}})
	assert.Error(t, err, "invalid exclude pattern should be rejected")
}

func TestExtractChainedSymlinksStayInside(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	data := makeArchive(t,
		tarEntry{name: "repo-abc/a/l", typ: tar.TypeSymlink, link: ".."},
		tarEntry{name: "repo-abc/a/l/b", typ: tar.TypeSymlink, link: ".."},
		file("repo-abc/a/l/b/evil.txt", "boom"),
	)
	parent := t.TempDir()
	dest := filepath.Join(parent, "dest")

	res, err := Extract(context.Background(), bytes.NewReader(data), dest, Options{})
	require.Error(t, err, "a symlink that leads above dest should be rejected")
	assert.True(t, errors.Is(err, ErrExtract), "error should match ErrExtract, got %v", err)
	assert.Equal(t, []string{"a/l"}, res.Written, "only the first link resolves inside dest")

	assert.NoFileExists(t, filepath.Join(parent, "evil.txt"), "nothing should be written outside dest")
	_, err = os.Lstat(filepath.Join(parent, "b"))
	assert.True(t, os.IsNotExist(err), "no link should be created outside dest")
}

func TestExtractSkipsUnsupported(t *testing.T) {
	data := makeArchive(t,
		file("repo-abc/README.md", "hello"),
		tarEntry{name: "repo-abc/hard", typ: tar.TypeLink, link: "repo-abc/README.md"},
	)
	dest := t.TempDir()

	res, err := Extract(context.Background(), bytes.NewReader(data), dest, Options{})
	require.NoError(t, err, "unsupported entries should not fail extraction")
	assert.Equal(t, []string{"README.md"}, res.Written)
	assert.Equal(t, []string{"hard"}, res.Skipped, "hard links should be reported as skipped")
	assert.NoFileExists(t, filepath.Join(dest, "hard"))
}

func TestExtractNoRollback(t *testing.T) {
	data := makeArchive(t,
		file("repo-abc/first.txt", "kept"),
		file("repo-abc/../escape.txt", "boom"),
	)
	dest := t.TempDir()

	res, err := Extract(context.Background(), bytes.NewReader(data), dest, Options{})
	require.Error(t, err, "extraction should fail on the second entry")
	assert.Equal(t, []string{"first.txt"}, res.Written, "result should list what was written")

	data2, err := os.ReadFile(filepath.Join(dest, "first.txt"))
	require.NoError(t, err, "entries written before the failure should remain")
	assert.Equal(t, "kept", string(data2))
}

func TestExtractCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Extract(ctx, bytes.NewReader(sampleArchive(t)), t.TempDir(), Options{})
	require.Error(t, err, "canceled context should stop extraction")
	assert.True(t, errors.Is(err, context.Canceled), "error should wrap context.Canceled")
	assert.True(t, errors.Is(err, ErrExtract), "interruption should surface as an extraction failure")

	var xerr *ExtractError
	assert.True(t, errors.As(err, &xerr), "error should be an ExtractError")
}
