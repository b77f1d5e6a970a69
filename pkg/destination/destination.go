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

package destination

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
)

// ErrInvalid matches every destination Error
var ErrInvalid = errors.Base("invalid destination")

// Error reports why a destination cannot receive an extraction
type Error struct {
	Path   string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrInvalid }

// 🎯 Validate checks that path is missing, or an empty writable directory.
// A missing path is accepted when its nearest existing parent is writable.
func Validate(path string) error {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		parent, err := nearestExisting(filepath.Dir(filepath.Clean(path)))
		if err != nil {
			return &Error{Path: path, Reason: "cannot inspect parent directory", Err: err}
		}
		if err := checkWritable(parent); err != nil {
			return &Error{Path: path, Reason: "parent directory is not writable", Err: err}
		}
		return nil
	case err != nil:
		return &Error{Path: path, Reason: "cannot inspect destination", Err: err}
	case !info.IsDir():
		return &Error{Path: path, Reason: "not a directory"}
	}

	empty, err := isEmpty(path)
	if err != nil {
		return &Error{Path: path, Reason: "cannot read directory", Err: err}
	}
	if !empty {
		return &Error{Path: path, Reason: "directory is not empty"}
	}

	if err := checkWritable(path); err != nil {
		return &Error{Path: path, Reason: "directory is not writable", Err: err}
	}
	return nil
}

func nearestExisting(dir string) (string, error) {
	for {
		info, err := os.Stat(dir)
		if err == nil {
			if !info.IsDir() {
				return "", errors.Errorf("%s is not a directory", dir)
			}
			return dir, nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", err
		}
		dir = parent
	}
}

func isEmpty(dir string) (bool, error) {
	f, err := os.Open(dir)
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, err = f.Readdirnames(1)
	if err == io.EOF {
		return true, nil
	}
	return false, err
}

// checkWritable probes dir with a temporary file, which also covers ACLs and
// read-only mounts that mode bits miss.
func checkWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".degit-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
