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
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
	"gitlab.com/tozd/go/errors"
)

// 🧩 GoGitLister lists references in-process with go-git, without a git binary
type GoGitLister struct{}

func (g *GoGitLister) ListRefs(ctx context.Context, repoURL string) (string, error) {
	remote := git.NewRemote(memory.NewStorage(), &gitconfig.RemoteConfig{
		Name: git.DefaultRemoteName,
		URLs: []string{repoURL},
	})

	refs, err := remote.ListContext(ctx, &git.ListOptions{
		PeelingOption: git.AppendPeeled,
	})
	if err != nil {
		return "", errors.Errorf("listing remote references: %w", err)
	}

	return formatReferences(refs), nil
}

// formatReferences renders references the way git ls-remote does: HEAD first,
// then sorted by name, with the symbolic HEAD replaced by its target's hash.
func formatReferences(refs []*plumbing.Reference) string {
	hashes := make(map[plumbing.ReferenceName]plumbing.Hash, len(refs))
	for _, r := range refs {
		if r.Type() == plumbing.HashReference {
			hashes[r.Name()] = r.Hash()
		}
	}

	sorted := make([]*plumbing.Reference, len(refs))
	copy(sorted, refs)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Name(), sorted[j].Name()
		if (a == plumbing.HEAD) != (b == plumbing.HEAD) {
			return a == plumbing.HEAD
		}
		return a.String() < b.String()
	})

	var b strings.Builder
	for _, r := range sorted {
		hash := r.Hash()
		if r.Type() == plumbing.SymbolicReference {
			target, ok := hashes[r.Target()]
			if !ok {
				continue
			}
			hash = target
		}
		fmt.Fprintf(&b, "%s\t%s\n", hash, r.Name())
	}
	return b.String()
}
