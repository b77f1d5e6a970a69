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
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// UserAgent is sent with every archive request. The command line sets it to
// degit/<version>.
var UserAgent = "degit"

var (
	// ErrDownload matches every DownloadError
	ErrDownload = errors.Base("download failed")

	// ErrRepositoryNotFound matches download failures where the host reported
	// the repository as missing or private.
	ErrRepositoryNotFound = errors.Base("could not find repository")
)

// 📥 Archive is an open archive download
type Archive struct {
	Body          io.ReadCloser
	ContentLength int64 // -1 when the host did not declare a length
}

// DownloadError reports a failed archive request. StatusCode is zero when no
// response was received.
type DownloadError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *DownloadError) Error() string {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return fmt.Sprintf("%s (%s)", ErrRepositoryNotFound, e.URL)
	case e.StatusCode != 0:
		return fmt.Sprintf("received response status %d %s from %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
	default:
		return fmt.Sprintf("downloading %s: %v", e.URL, e.Err)
	}
}

func (e *DownloadError) Unwrap() error { return e.Err }

func (e *DownloadError) Is(target error) bool {
	switch target {
	case ErrDownload:
		return true
	case ErrRepositoryNotFound:
		return e.StatusCode == http.StatusUnauthorized
	default:
		return false
	}
}

// 🔍 Download issues a GET for an archive URL. The caller closes the body.
func Download(ctx context.Context, client *http.Client, url string) (*Archive, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &DownloadError{URL: url, Err: errors.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", UserAgent)

	zerolog.Ctx(ctx).Debug().Str("url", url).Msg("requesting archive")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &DownloadError{URL: url, Err: errors.Errorf("making request: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &DownloadError{URL: url, StatusCode: resp.StatusCode}
	}

	zerolog.Ctx(ctx).Debug().
		Str("url", url).
		Int64("content_length", resp.ContentLength).
		Msg("archive response received")

	return &Archive{
		Body:          resp.Body,
		ContentLength: resp.ContentLength,
	}, nil
}
