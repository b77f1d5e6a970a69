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

package degit

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/walteh/degit/pkg/archive"
	"github.com/walteh/degit/pkg/destination"
	"github.com/walteh/degit/pkg/log"
	"github.com/walteh/degit/pkg/provider"
	"github.com/walteh/degit/pkg/refs"
	"github.com/walteh/degit/pkg/repo"
	"github.com/walteh/degit/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// Options configures a single run
type Options struct {
	Dest       string         // defaults to "."
	Lister     refs.Lister    // defaults to git ls-remote
	HTTPClient *http.Client   // defaults to http.DefaultClient
	Exclude    []string       // doublestar patterns skipped during extraction
	Progress   status.Factory // defaults to no progress output
	Logger     *log.Logger    // defaults to the logger in ctx
}

// 🚀 Run copies the repository described by src into opts.Dest. Every stage
// fails fast and the first error is returned unchanged, so callers can match
// it with errors.As against repo.ParseError, destination.Error,
// refs.FetchError, refs.NotFoundError, provider.DownloadError and
// archive.ExtractError, or with errors.Is against the matching sentinels.
func Run(ctx context.Context, src string, opts Options) error {
	r, err := repo.Parse(src)
	if err != nil {
		return err
	}

	dest := opts.Dest
	if dest == "" {
		dest = "."
	}
	if err := destination.Validate(dest); err != nil {
		return err
	}

	lister := opts.Lister
	if lister == nil {
		lister = &refs.GitLister{}
	}
	console := opts.Logger
	if console == nil {
		console = log.FromContext(ctx)
	}
	progress := opts.Progress
	if progress == nil {
		progress = func(int64) status.Reporter { return status.Noop() }
	}

	logger := zerolog.Ctx(ctx).With().Str("repo", r.String()).Str("dest", dest).Logger()
	ctx = logger.WithContext(ctx)

	hash, err := refs.NewResolver(lister).Resolve(ctx, r)
	if err != nil {
		return err
	}

	p, err := provider.For(r)
	if err != nil {
		return errors.Errorf("resolving provider: %w", err)
	}
	url := p.ArchiveURL(r, hash)

	console.Downloading(r, dest)

	ref := r.Ref
	if ref == "" {
		ref = "HEAD"
	}
	console.Infof("%s resolved to %s", ref, shortHash(hash))

	dl, err := provider.Download(ctx, opts.HTTPClient, url)
	if err != nil {
		return err
	}
	defer dl.Body.Close()

	res, err := archive.Extract(ctx, dl.Body, dest, archive.Options{
		Subdir:   r.Subdir,
		Exclude:  opts.Exclude,
		Progress: progress(dl.ContentLength),
	})
	if err != nil {
		return err
	}

	for _, skipped := range res.Skipped {
		console.Warningf("skipped unsupported entry %s", skipped)
	}

	logger.Info().Str("hash", hash).Int("files", res.Files).Int("dirs", res.Dirs).Msg("repository extracted")
	console.Successf("%s@%s extracted to %s", r.Slug(), shortHash(hash), dest)

	return nil
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
