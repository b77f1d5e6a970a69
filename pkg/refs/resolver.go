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

	"github.com/rs/zerolog"
	"github.com/walteh/degit/pkg/provider"
	"github.com/walteh/degit/pkg/repo"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrFetch matches every FetchError
	ErrFetch = errors.Base("could not fetch refs")
	// ErrNotFound matches every NotFoundError
	ErrNotFound = errors.Base("reference not found")
)

// FetchError reports that the reference list could not be queried or parsed.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("could not fetch refs from %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// NotFoundError reports that the listing succeeded but nothing matched.
type NotFoundError struct {
	URL string
	Ref string
}

func (e *NotFoundError) Error() string {
	ref := e.Ref
	if ref == "" {
		ref = "HEAD"
	}
	return fmt.Sprintf("reference %q not found in %s", ref, e.URL)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// 🔍 Resolver maps a repository's requested ref to an exact commit hash
type Resolver struct {
	lister Lister
}

func NewResolver(lister Lister) *Resolver {
	return &Resolver{lister: lister}
}

// Resolve queries the repository's reference list and matches the requested ref.
func (r *Resolver) Resolve(ctx context.Context, rp repo.Repository) (string, error) {
	p, err := provider.For(rp)
	if err != nil {
		return "", errors.Errorf("resolving provider: %w", err)
	}
	url := p.RepoURL(rp)

	logger := zerolog.Ctx(ctx).With().Str("url", url).Str("ref", rp.Ref).Logger()
	logger.Debug().Msg("listing remote references")

	out, err := r.lister.ListRefs(ctx, url)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}

	refs, err := ParseListing(out)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	logger.Debug().Int("count", len(refs)).Msg("parsed remote references")

	hash, ok := Match(refs, rp.Ref)
	if !ok {
		return "", &NotFoundError{URL: url, Ref: rp.Ref}
	}

	logger.Debug().Str("hash", hash).Msg("resolved reference")
	return hash, nil
}
