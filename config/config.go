// Copyright © 2026 pe2 contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds the pe2 driver's optional runtime tuning file.
// cmd/pe2 reads it with Load and then layers any --dial-timeout/
// --log-level flag overrides (bound through viper) on top.
package config

import (
	"gopkg.in/yaml.v2"
)

// Runtime holds settings that shape how the batch loop runs but aren't
// part of the positional CLI contract (§6): dial/accept timeouts and log
// verbosity. Defaults match what a bare `pe2 ...` invocation without a
// config file should do.
type Runtime struct {
	DialTimeoutSeconds int    `yaml:"dialTimeoutSeconds"`
	LogLevel           string `yaml:"logLevel"`
}

// Default returns the built-in Runtime used when no config file is
// supplied.
func Default() Runtime {
	return Runtime{
		DialTimeoutSeconds: 30,
		LogLevel:           "info",
	}
}

// Load parses a YAML config file's bytes into a Runtime seeded with
// Default, so a partial file only overrides the fields it names.
func Load(data []byte) (Runtime, error) {
	r := Default()
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Runtime{}, err
	}
	return r, nil
}
