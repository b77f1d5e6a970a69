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

package repo

import (
	"fmt"
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🏠 HostKind identifies the hosting provider of a repository
type HostKind int

const (
	GitHub HostKind = iota
	GitLab
	BitBucket
)

func (k HostKind) String() string {
	switch k {
	case GitHub:
		return "GitHub"
	case GitLab:
		return "GitLab"
	case BitBucket:
		return "BitBucket"
	default:
		return "unknown"
	}
}

const (
	githubDomain    = "github.com"
	gitlabDomain    = "gitlab.com"
	bitbucketDomain = "bitbucket.org"
)

// 🌐 Host is a hosting provider plus the domain it is served from.
// Only GitLab hosts carry a domain other than the provider default.
type Host struct {
	Kind   HostKind
	Domain string
}

func GitHubHost() Host             { return Host{Kind: GitHub, Domain: githubDomain} }
func BitBucketHost() Host          { return Host{Kind: BitBucket, Domain: bitbucketDomain} }
func GitLabHost(domain string) Host { return Host{Kind: GitLab, Domain: domain} }

func (h Host) String() string {
	if h.Kind == GitLab && h.Domain != gitlabDomain {
		return fmt.Sprintf("GitLab (%s)", h.Domain)
	}
	return h.Kind.String()
}

// 📦 Repository is a parsed source specification. Subdir and Ref are empty
// when absent.
type Repository struct {
	Host   Host
	Owner  string
	Name   string
	Subdir string
	Ref    string
}

// Slug returns owner/name
func (r Repository) Slug() string {
	return r.Owner + "/" + r.Name
}

func (r Repository) String() string {
	project := r.Name
	if r.Subdir != "" {
		project += "/" + r.Subdir
	}
	if r.Ref != "" {
		project += "#" + r.Ref
	}
	return fmt.Sprintf("%s/%s from %s", r.Owner, project, r.Host)
}

// ErrParse matches every ParseError
var ErrParse = errors.Base("could not parse src")

// ParseError is returned when a source string matches none of the accepted forms.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("could not parse src %q: %s", e.Input, e.Reason)
	}
	return fmt.Sprintf("could not parse src %q", e.Input)
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// groups: 1 url domain, 2 ssh domain, 3 shorthand prefix, 4 owner, 5 name, 6 subdir, 7 ref
var srcPattern = regexp.MustCompile(
	`^(?:(?:https?://)?([^:/\s#]+\.[^:/\s#]+)/|git@([^:/\s#]+)[:/]|([^/:\s#]+):)?` +
		`([^/\s#:]+)/([^/\s#]+)((?:/[^/\s#]+)*)/?(?:#([^\s#]+))?$`,
)

// 🔍 Parse parses a source specification such as
//
//	owner/name
//	gh:owner/name/subdir#v1.0.0
//	https://gitlab.example.org/owner/name.git
//	git@bitbucket.org:owner/name
//
// into a Repository. Inputs without a host indicator default to GitHub.
func Parse(src string) (Repository, error) {
	if strings.TrimSpace(src) == "" {
		return Repository{}, &ParseError{Input: src, Reason: "empty source"}
	}
	if strings.Count(src, "#") > 1 {
		return Repository{}, &ParseError{Input: src, Reason: "more than one '#'"}
	}
	if strings.ContainsAny(src, " \t\r\n") {
		return Repository{}, &ParseError{Input: src, Reason: "contains whitespace"}
	}

	m := srcPattern.FindStringSubmatch(src)
	if m == nil {
		return Repository{}, &ParseError{Input: src}
	}

	var host Host
	switch {
	case m[1] != "":
		host = hostFromDomain(m[1])
	case m[2] != "":
		host = hostFromDomain(m[2])
	case m[3] != "":
		host = hostFromShorthand(m[3])
	default:
		host = GitHubHost()
	}

	name := strings.TrimSuffix(m[5], ".git")
	if name == "" {
		return Repository{}, &ParseError{Input: src, Reason: "empty repository name"}
	}

	return Repository{
		Host:   host,
		Owner:  m[4],
		Name:   name,
		Subdir: strings.Trim(m[6], "/"),
		Ref:    m[7],
	}, nil
}

func hostFromDomain(domain string) Host {
	switch strings.ToLower(domain) {
	case githubDomain:
		return GitHubHost()
	case bitbucketDomain:
		return BitBucketHost()
	default:
		return GitLabHost(domain)
	}
}

func hostFromShorthand(prefix string) Host {
	switch strings.ToLower(prefix) {
	case "github", "gh":
		return GitHubHost()
	case "gitlab", "gl":
		return GitLabHost(gitlabDomain)
	case "bitbucket", "bb":
		return BitBucketHost()
	default:
		return GitLabHost(prefix)
	}
}
