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
Package status renders extraction progress on the terminal.

	+-----------+   bytes    +-----------+
	|  archive  | ---------> | Reporter  |
	|  stream   |  entries   | (bar/noop)|
	+-----------+ ---------> +-----------+

🎯 Purpose:
- Counts archive bytes as they stream in
- Shows the entry currently being written
- Stays silent when the output is not a terminal

🤝 Interfaces:
- Reporter: receives bytes and entry descriptions
- Factory: builds a Reporter once the archive size is known

💡 Example:

	progress := status.ForTerminal(os.Stderr)(resp.ContentLength)
	defer progress.Finish("Done")
	io.Copy(progress, body)
*/
package status
