// Copyright The Cardgen Authors.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config provides the ability to load and save the generator's
// config.json.
package config

import (
	"errors"
	"io/fs"

	"github.com/smarthealthcards/cardgen-go/internal/file"
)

// Config reflects the config.json file.
type Config struct {
	// Issuer is the issuer URL stamped into generated credentials.
	Issuer string `json:"issuer,omitempty"`

	// Keys is the path of the JWK-set document holding signing keys.
	Keys string `json:"keys,omitempty"`

	// OutputDir is where artifact files are written.
	OutputDir string `json:"outputDir,omitempty"`

	// SingleChunkLimit and ChunkLimit override the token chunk
	// capacities when non-zero.
	SingleChunkLimit int `json:"singleChunkLimit,omitempty"`
	ChunkLimit       int `json:"chunkLimit,omitempty"`
}

// NewConfig creates a new config with defaults.
func NewConfig() *Config {
	return &Config{
		OutputDir: "examples",
	}
}

// Save stores the config to file.
func (c *Config) Save(path string) error {
	return file.Save(path, c)
}

// LoadConfig reads the config from file or returns a default config if
// not found.
func LoadConfig(path string) (*Config, error) {
	var config Config
	if err := file.Load(path, &config); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewConfig(), nil
		}
		return nil, err
	}
	return &config, nil
}
