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
Package config loads optional defaults for degit.

	            +-------------+
	            |   Config    |
	            | (Defaults)  |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |           |           |
	+-----+-----+ +---+---+ +-----+-----+
	|   JSON    | | YAML  | |    HCL    |
	|  Parser   | | Parser| |  Parser   |
	+-----------+ +-------+ +-----------+

🎯 Purpose:
- Lets users pin a lister, git binary and exclude patterns once
- Picks a parser from the file extension
- Rejects unknown fields and invalid values early

🔄 Flow:
1. Reads the file named by --config or $DEGIT_CONFIG
2. Parses format-specific syntax
3. Validates lister names and exclude patterns
4. Command line flags override whatever the file sets

💡 Example (HCL, with environment lookups):

	lister     = "go-git"
	git_binary = env.DEGIT_GIT
	exclude    = [".github/**", "*.md"]
*/
package config
