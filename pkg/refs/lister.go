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
	"bytes"
	"context"
	"net/http"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Lister returns the raw reference list of a repository as
// `<hash>\t<ref-path>` lines
type Lister interface {
	ListRefs(ctx context.Context, repoURL string) (string, error)
}

// Lister names accepted by NewLister
const (
	ListerGit    = "git"
	ListerGoGit  = "go-git"
	ListerGitHub = "github"
)

// Listers returns the accepted lister names
func Listers() []string {
	return []string{ListerGit, ListerGoGit, ListerGitHub}
}

// ListerOptions configures NewLister
type ListerOptions struct {
	GitBinary  string       // git executable for the git lister
	HTTPClient *http.Client // transport for the github lister
}

// 🏭 NewLister creates a lister by name. An empty name selects the git lister.
func NewLister(name string, opts ListerOptions) (Lister, error) {
	switch name {
	case "", ListerGit:
		return &GitLister{Binary: opts.GitBinary}, nil
	case ListerGoGit:
		return &GoGitLister{}, nil
	case ListerGitHub:
		return NewGitHubLister(opts.HTTPClient), nil
	default:
		return nil, errors.Errorf("unknown lister %q (options: %s)", name, strings.Join(Listers(), ", "))
	}
}

// 🐚 GitLister runs `git ls-remote`
type GitLister struct {
	Binary string
}

func (g *GitLister) ListRefs(ctx context.Context, repoURL string) (string, error) {
	bin := g.Binary
	if bin == "" {
		bin = "git"
	}

	cmd := exec.CommandContext(ctx, bin, "ls-remote", repoURL)
	// private repositories must fail instead of blocking on a credential prompt
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	zerolog.Ctx(ctx).Trace().Str("command", cmd.String()).Msg("running git")

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", errors.Errorf("running git ls-remote: %s: %w", msg, err)
		}
		return "", errors.Errorf("running git ls-remote: %w", err)
	}

	return stdout.String(), nil
}
