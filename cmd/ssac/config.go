/*
 * Copyright 2022 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cloudwego/ssac"
	"github.com/cloudwego/ssac/ir"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// config is the content of the file given with --config. Settings left out
// keep the defaults taken from the environment.
//
//	max_rounds = 4
//	verify     = true
type config struct {
	MaxRounds *int  `toml:"max_rounds"`
	Verify    *bool `toml:"verify"`
}

func loadConfig(path string) (config, error) {
	var cfg config
	if path == "" {
		return cfg, nil
	}

	/* decode the file */
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}

	/* reject unknown keys */
	if keys := meta.Undecoded(); len(keys) != 0 {
		return config{}, fmt.Errorf("%s: unknown key %q", path, keys[0].String())
	}
	if cfg.MaxRounds != nil && *cfg.MaxRounds < 0 {
		return config{}, fmt.Errorf("%s: max_rounds must not be negative", path)
	}
	return cfg, nil
}

// options merges the configuration file with the command line, flags take
// precedence.
func options(cmd *cobra.Command) ([]ssac.Option, error) {
	flags := cmd.Flags()
	path, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}

	/* load the configuration file */
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, err
	}

	/* command line overrides */
	if flags.Changed("verify") {
		verify, err := flags.GetBool("verify")
		if err != nil {
			return nil, err
		}
		cfg.Verify = &verify
	}
	if flags.Changed("max-rounds") {
		rounds, err := flags.GetInt("max-rounds")
		if err != nil {
			return nil, err
		} else if rounds < 0 {
			return nil, fmt.Errorf("invalid number of rounds: %d", rounds)
		}
		cfg.MaxRounds = &rounds
	}

	/* the logger */
	logger := zap.NewNop()
	if verbose, _ := flags.GetBool("verbose"); verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return nil, err
		}
	}

	/* only what was set explicitly */
	ret := []ssac.Option{ssac.WithLogger(logger)}
	if cfg.MaxRounds != nil {
		ret = append(ret, ssac.WithMaxRounds(*cfg.MaxRounds))
	}
	if cfg.Verify != nil {
		ret = append(ret, ssac.WithVerify(*cfg.Verify))
	}
	return ret, nil
}

// load parses the file named path, "-" reads the standard input.
func load(path string) ([]*ir.Function, error) {
	var err error
	var src []byte

	/* read the source */
	if path == "-" {
		src, err = io.ReadAll(os.Stdin)
	} else {
		src, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	/* parse all the functions */
	fns, err := ir.Parse(ir.NewArena(), string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fns, nil
}

// compile loads and optimizes the functions in path.
func compile(cmd *cobra.Command, path string) ([]*ir.Function, error) {
	fns, err := load(path)
	if err != nil {
		return nil, err
	}
	opts, err := options(cmd)
	if err != nil {
		return nil, err
	}
	return ssac.Compile(fns, opts...)
}

func lookup(fns []*ir.Function, name string) (*ir.Function, error) {
	for _, fn := range fns {
		if fn.Name == name {
			return fn, nil
		}
	}
	names := make([]string, len(fns))
	for i, fn := range fns {
		names[i] = fn.Name
	}
	return nil, fmt.Errorf("function %s not found in [%s]", name, strings.Join(names, ", "))
}
