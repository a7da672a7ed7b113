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
Package config loads rxscan rule sets.

🎯 Purpose:
- Reads rule sets from YAML, HCL or JSON files
- Validates every rule before any file is touched
- Gives the apply step compiled-ready rules with parsed flags

🔄 Flow:
1. Pick a parser from the file extension (Register / GetParser)
2. Decode, rejecting unknown keys
3. Validate: engine exists, patterns compile, templates only reference
   groups the pattern has, globs are well formed

📝 Format (YAML):

	engine: re2
	backup: true
	rules:
	  - name: rename
	    pattern: "(foo)bar"
	    template: "$1baz"
	    flags: [i]
	    files: ["src/**"]
	    ignore: ["vendor/**"]

A rule without files applies to every file ("**").

🔍 Example:

	cfg, err := config.Load(ctx, ".rxscan.yaml")
	if err != nil {
		return err
	}
	for _, r := range cfg.Rules {
		fmt.Println(r.Name, r.PatternFlags())
	}
*/
package config
