// Copyright (c) 2023-2026 Shoal Authors.
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

// Package configutil loads and validates configuration from YAML files.
//
// A file may build on another via an extends directive:
//
// production.yaml:
// extends: base.yaml
//
// Extension chains form a linked list, no multiple inheritance. Values
// within a chain are deep merged: maps combine key by key, while arrays are
// replaced wholesale by the more derived file.
package configutil

import (
	"bytes"
	"errors"
	"fmt"
	"io/ioutil"
	"path"
	"path/filepath"

	"github.com/shoal/shoal/utils/stringset"

	"gopkg.in/validator.v2"
	"gopkg.in/yaml.v2"
)

// ErrCycleRef is returned when configuration files extend each other in a
// cycle.
var ErrCycleRef = errors.New("cyclic reference in configuration extends detected")

// ValidationError is returned when a merged configuration fails validation.
type ValidationError struct {
	errorMap validator.ErrorMap
}

// ErrForField returns the validation error for the given field.
func (e ValidationError) ErrForField(name string) error {
	return e.errorMap[name]
}

func (e ValidationError) Error() string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "validation failed")
	for f, err := range e.errorMap {
		fmt.Fprintf(&b, "   %s: %v\n", f, err)
	}
	return b.String()
}

// Load reads filename into config, following extends directives and deep
// merging the chain base-first, then validates the merged result.
func Load(filename string, config interface{}) error {
	chain, err := readChain(filename)
	if err != nil {
		return err
	}
	// Base files unmarshal first so derived files override their fields.
	for i := len(chain) - 1; i >= 0; i-- {
		if err := yaml.Unmarshal(chain[i].data, config); err != nil {
			return fmt.Errorf("unmarshal %s: %s", chain[i].name, err)
		}
	}
	if err := validator.Validate(config); err != nil {
		return ValidationError{err.(validator.ErrorMap)}
	}
	return nil
}

type configFile struct {
	name string
	data []byte
}

// readChain reads filename and every file it transitively extends, most
// derived first.
func readChain(filename string) ([]configFile, error) {
	var chain []configFile
	seen := make(stringset.Set)
	for filename != "" {
		if seen.Has(filename) {
			return nil, ErrCycleRef
		}
		seen.Add(filename)

		data, err := ioutil.ReadFile(filename)
		if err != nil {
			return nil, err
		}
		chain = append(chain, configFile{filename, data})

		var directive struct {
			Extends string `yaml:"extends"`
		}
		if err := yaml.Unmarshal(data, &directive); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %s", filename, err)
		}

		next := directive.Extends
		if next != "" && !filepath.IsAbs(next) {
			// Relative paths resolve against the directory of the file
			// naming them.
			next = path.Join(filepath.Dir(filename), next)
		}
		filename = next
	}
	return chain, nil
}
