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

/*
Package provider knows how each hosting provider lays out its URLs and fetches
repository archives over HTTPS.

	            +-------------+
	            |  Provider   |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+ +-----+----+ +-----+-----+
	|  GitHub  | |  GitLab  | | BitBucket |
	+----------+ +----------+ +-----------+

🎯 Purpose:
- Canonical web URL per repository (used for ref listing)
- Archive URL per repository and commit
- Archive download with status handling

🔗 URL shapes:

	GitHub     https://github.com/{owner}/{name}/archive/{hash}.tar.gz
	GitLab     https://{domain}/{owner}/{name}/-/archive/{hash}/{name}-{hash}.tar.gz
	BitBucket  https://bitbucket.org/{owner}/{name}/get/{hash}.tar.gz

⚠️ Status handling:
Hosts answer 401 for private and missing repositories alike, so a 401 is
reported as ErrRepositoryNotFound. Any other non-200 status is a DownloadError
carrying the code. Requests are never retried.

🔍 Example:

	p, err := provider.For(r)
	if err != nil {
		return err
	}

	archive, err := provider.Download(ctx, http.DefaultClient, p.ArchiveURL(r, hash))
	if errors.Is(err, provider.ErrRepositoryNotFound) {
		// private or missing
	}
	defer archive.Body.Close()
*/
package provider
