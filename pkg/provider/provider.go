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

package provider

import (
	"fmt"

	"github.com/walteh/degit/pkg/repo"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Provider builds the web and archive URLs for one hosting provider
type Provider interface {
	// 📝 Name returns the display name of the provider
	Name() string

	// 🔗 RepoURL returns the canonical https URL of the repository
	RepoURL(r repo.Repository) string

	// 📦 ArchiveURL returns the tar.gz archive URL of the repository at a commit
	ArchiveURL(r repo.Repository, hash string) string
}

var (
	// 🗺️ providers maps host kinds to their provider
	providers = make(map[repo.HostKind]Provider)
)

// 📝 Register registers a provider for a host kind
func Register(kind repo.HostKind, p Provider) {
	providers[kind] = p
}

// 🎯 Get returns the provider registered for a host kind
func Get(kind repo.HostKind) (Provider, error) {
	p, ok := providers[kind]
	if !ok {
		return nil, errors.Errorf("no provider registered for %s", kind)
	}
	return p, nil
}

// 🔍 For returns the provider serving a repository
func For(r repo.Repository) (Provider, error) {
	return Get(r.Host.Kind)
}

func init() {
	Register(repo.GitHub, &GitHub{})
	Register(repo.GitLab, &GitLab{})
	Register(repo.BitBucket, &BitBucket{})
}

// GitHub serves github.com
type GitHub struct{}

func (p *GitHub) Name() string { return "GitHub" }

func (p *GitHub) RepoURL(r repo.Repository) string {
	return fmt.Sprintf("https://github.com/%s/%s", r.Owner, r.Name)
}

func (p *GitHub) ArchiveURL(r repo.Repository, hash string) string {
	return fmt.Sprintf("%s/archive/%s.tar.gz", p.RepoURL(r), hash)
}

// GitLab serves gitlab.com and self-hosted instances on the repository's domain
type GitLab struct{}

func (p *GitLab) Name() string { return "GitLab" }

func (p *GitLab) RepoURL(r repo.Repository) string {
	return fmt.Sprintf("https://%s/%s/%s", r.Host.Domain, r.Owner, r.Name)
}

func (p *GitLab) ArchiveURL(r repo.Repository, hash string) string {
	return fmt.Sprintf("%s/-/archive/%s/%s-%s.tar.gz", p.RepoURL(r), hash, r.Name, hash)
}

// BitBucket serves bitbucket.org
type BitBucket struct{}

func (p *BitBucket) Name() string { return "BitBucket" }

func (p *BitBucket) RepoURL(r repo.Repository) string {
	return fmt.Sprintf("https://bitbucket.org/%s/%s", r.Owner, r.Name)
}

func (p *BitBucket) ArchiveURL(r repo.Repository, hash string) string {
	return fmt.Sprintf("%s/get/%s.tar.gz", p.RepoURL(r), hash)
}
