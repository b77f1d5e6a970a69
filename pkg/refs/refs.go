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

package refs

import (
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🏷️ Kind classifies an entry of a remote's reference list
type Kind int

const (
	KindHead Kind = iota
	KindBranch
	KindTag
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindHead:
		return "head"
	case KindBranch:
		return "branch"
	case KindTag:
		return "tag"
	default:
		return "other"
	}
}

const peeledSuffix = "^{}"

// 📌 Reference is one line of a remote's reference list. Label holds the
// refs/<label>/ segment for KindOther entries.
type Reference struct {
	Kind  Kind
	Label string
	Name  string
	Hash  string
}

var hashPattern = regexp.MustCompile(`^[0-9a-f]{7,64}$`)

// 📝 ParseListing parses `<hash>\t<ref-path>` lines as printed by git ls-remote.
// A single malformed line fails the whole listing.
func ParseListing(out string) ([]Reference, error) {
	var refs []Reference
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}

		ref, err := parseLine(line)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func parseLine(line string) (Reference, error) {
	parts := strings.Split(line, "\t")
	if len(parts) != 2 {
		return Reference{}, errors.Errorf("could not parse git ref: %q", line)
	}

	hash := strings.ToLower(parts[0])
	if !hashPattern.MatchString(hash) {
		return Reference{}, errors.Errorf("invalid hash in git ref: %q", line)
	}

	path := parts[1]
	if path == "HEAD" {
		return Reference{Kind: KindHead, Name: path, Hash: hash}, nil
	}

	rest, ok := strings.CutPrefix(path, "refs/")
	if !ok {
		return Reference{}, errors.Errorf("could not parse git ref: %q", line)
	}
	label, name, ok := strings.Cut(rest, "/")
	if !ok || label == "" || name == "" {
		return Reference{}, errors.Errorf("could not parse git ref: %q", line)
	}

	switch label {
	case "heads":
		return Reference{Kind: KindBranch, Name: name, Hash: hash}, nil
	case "tags":
		return Reference{Kind: KindTag, Name: name, Hash: hash}, nil
	default:
		return Reference{Kind: KindOther, Label: label, Name: name, Hash: hash}, nil
	}
}

// 🎯 Match finds the commit hash for a requested ref.
//
// An empty ref or "HEAD" selects the head entry. Otherwise the first entry in
// listing order whose name equals ref, or whose hash starts with ref, wins; a
// branch named like another entry's hash prefix is therefore ambiguous and
// resolved by position. Annotated tags resolve to their peeled commit when the
// listing carries one.
func Match(refs []Reference, ref string) (string, bool) {
	if ref == "" || ref == "HEAD" {
		for _, r := range refs {
			if r.Kind == KindHead {
				return r.Hash, true
			}
		}
	}
	if ref == "" {
		return "", false
	}

	prefix := strings.ToLower(ref)
	for _, r := range refs {
		if r.Name == ref || strings.HasPrefix(r.Hash, prefix) {
			if r.Kind == KindTag {
				if peeled, ok := find(refs, KindTag, r.Name+peeledSuffix); ok {
					return peeled.Hash, true
				}
			}
			return r.Hash, true
		}
	}
	return "", false
}

func find(refs []Reference, kind Kind, name string) (Reference, bool) {
	for _, r := range refs {
		if r.Kind == kind && r.Name == name {
			return r, true
		}
	}
	return Reference{}, false
}
