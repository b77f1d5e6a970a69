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
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/google/go-github/v60/github"
	"gitlab.com/tozd/go/errors"
)

// 🐙 GitHubLister builds the reference list from the GitHub REST API. The
// default branch stands in for HEAD. GITHUB_TOKEN is used when set.
type GitHubLister struct {
	client *github.Client
}

func NewGitHubLister(httpClient *http.Client) *GitHubLister {
	client := github.NewClient(httpClient)
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		client = client.WithAuthToken(token)
	}
	return newGitHubLister(client)
}

func newGitHubLister(client *github.Client) *GitHubLister {
	return &GitHubLister{client: client}
}

func (g *GitHubLister) ListRefs(ctx context.Context, repoURL string) (string, error) {
	owner, name, err := parseGitHubURL(repoURL)
	if err != nil {
		return "", err
	}

	repository, _, err := g.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		return "", errors.Errorf("getting repository: %w", err)
	}

	var refs []*github.Reference
	opts := &github.ReferenceListOptions{ListOptions: github.ListOptions{PerPage: 100}}
	for {
		page, resp, err := g.client.Git.ListMatchingRefs(ctx, owner, name, opts)
		if err != nil {
			return "", errors.Errorf("listing references: %w", err)
		}
		refs = append(refs, page...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	var b strings.Builder
	defaultRef := "refs/heads/" + repository.GetDefaultBranch()
	for _, r := range refs {
		if r.GetRef() == defaultRef {
			fmt.Fprintf(&b, "%s\tHEAD\n", r.GetObject().GetSHA())
			break
		}
	}

	for _, r := range refs {
		sha := r.GetObject().GetSHA()
		fmt.Fprintf(&b, "%s\t%s\n", sha, r.GetRef())

		if r.GetObject().GetType() != "tag" {
			continue
		}
		tag, _, err := g.client.Git.GetTag(ctx, owner, name, sha)
		if err != nil {
			return "", errors.Errorf("peeling tag %s: %w", r.GetRef(), err)
		}
		fmt.Fprintf(&b, "%s\t%s%s\n", tag.GetObject().GetSHA(), r.GetRef(), peeledSuffix)
	}

	return b.String(), nil
}

func parseGitHubURL(repoURL string) (owner, name string, err error) {
	u, err := url.Parse(repoURL)
	if err != nil {
		return "", "", errors.Errorf("parsing repository url: %w", err)
	}
	if !strings.EqualFold(u.Host, "github.com") {
		return "", "", errors.Errorf("github lister only supports github.com, got %q", u.Host)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.Errorf("invalid github repository url: %s", repoURL)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}
