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
	"io"
	"io/fs"

	"github.com/klauspost/compress/gzip"
	"gitlab.com/tozd/go/errors"
)

// EntryType is the kind of filesystem object an archive entry describes
type EntryType int

const (
	TypeOther EntryType = iota
	TypeFile
	TypeDir
	TypeSymlink
)

func (t EntryType) String() string {
	switch t {
	case TypeFile:
		return "file"
	case TypeDir:
		return "dir"
	case TypeSymlink:
		return "symlink"
	default:
		return "other"
	}
}

// 📦 Entry is one archive member. Reading it yields the member's content and
// is only valid until the next call to Reader.Next.
type Entry struct {
	Path     string
	Type     EntryType
	Mode     fs.FileMode
	Linkname string

	r io.Reader
}

func (e *Entry) Read(p []byte) (int, error) {
	return e.r.Read(p)
}

// 📜 Reader walks a gzip compressed tarball one entry at a time
type Reader struct {
	gz   *gzip.Reader
	tr   *tar.Reader
	done bool
}

func NewReader(r io.Reader) (*Reader, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, errors.Errorf("reading gzip header: %w", err)
	}
	return &Reader{gz: gz, tr: tar.NewReader(gz)}, nil
}

// Next returns the next entry, or io.EOF once the archive is exhausted.
func (r *Reader) Next() (*Entry, error) {
	if r.done {
		return nil, io.EOF
	}

	for {
		hdr, err := r.tr.Next()
		if err == io.EOF {
			r.done = true
			return nil, io.EOF
		}
		if err != nil {
			return nil, errors.Errorf("reading archive entry: %w", err)
		}

		// git archive stores the commit id in a pax global header
		if hdr.Typeflag == tar.TypeXGlobalHeader {
			continue
		}

		return &Entry{
			Path:     hdr.Name,
			Type:     entryType(hdr.Typeflag),
			Mode:     hdr.FileInfo().Mode(),
			Linkname: hdr.Linkname,
			r:        r.tr,
		}, nil
	}
}

func (r *Reader) Close() error {
	return r.gz.Close()
}

func entryType(flag byte) EntryType {
	switch flag {
	case tar.TypeReg:
		return TypeFile
	case tar.TypeDir:
		return TypeDir
	case tar.TypeSymlink:
		return TypeSymlink
	default:
		return TypeOther
	}
}
