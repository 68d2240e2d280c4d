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
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/cloudwego/ssac"
	"github.com/cloudwego/ssac/internal/opts"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProgram = `
func main(%n.0 int) int {
    locals %i.1 int, %s.2 int, %c.3 int, %k.4 int
    result %s.2
    entry entry.0
    exit done.1
entry.0:
    %i.1 = 0
    %s.2 = 0
    %k.4 = mul 2, 3
    goto head.2
head.2:
    %c.3 = lt %i.1, %n.0
    if %c.3 then body.3 else done.1
body.3:
    %s.2 = add %s.2, %k.4
    %i.1 = add %i.1, 1
    goto head.2
done.1:
    call report(%s.2) next out.4
out.4:
    return %s.2
}
`

func writeFile(t *testing.T, name string, data string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig(writeFile(t, "ssac.toml", "max_rounds = 4\nverify = true\n"))
	require.NoError(t, err)
	require.NotNil(t, cfg.MaxRounds)
	require.NotNil(t, cfg.Verify)
	assert.Equal(t, 4, *cfg.MaxRounds)
	assert.True(t, *cfg.Verify)

	/* no file, no settings */
	cfg, err = loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, config{}, cfg)

	/* unknown keys and invalid values */
	_, err = loadConfig(writeFile(t, "bad.toml", "max_round = 4\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown key")
	_, err = loadConfig(writeFile(t, "neg.toml", "max_rounds = -1\n"))
	assert.Error(t, err)
	_, err = loadConfig(writeFile(t, "broken.toml", "max_rounds = \n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse TOML")
}

func newFlagCmd(t *testing.T, args ...string) *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("config", "", "")
	cmd.Flags().BoolP("verbose", "v", false, "")
	cmd.Flags().Bool("verify", false, "")
	cmd.Flags().Int("max-rounds", -1, "")
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func resolve(t *testing.T, cmd *cobra.Command) opts.Options {
	ret, err := options(cmd)
	require.NoError(t, err)
	o := opts.GetDefaultOptions()
	for _, fn := range ret {
		fn(&o)
	}
	return o
}

func TestOptions_KeepDefaults(t *testing.T) {
	defer ssac.SetVerify(ssac.SetVerify(true))
	defer ssac.SetMaxRounds(ssac.SetMaxRounds(7))

	/* nothing set, the environment defaults survive */
	o := resolve(t, newFlagCmd(t))
	assert.True(t, o.Verify)
	assert.Equal(t, 7, o.MaxRounds)

	/* the file overrides only what it sets */
	cfg := writeFile(t, "ssac.toml", "verify = false\n")
	o = resolve(t, newFlagCmd(t, "--config", cfg))
	assert.False(t, o.Verify)
	assert.Equal(t, 7, o.MaxRounds)

	/* flags override the file */
	o = resolve(t, newFlagCmd(t, "--config", cfg, "--verify", "--max-rounds", "2"))
	assert.True(t, o.Verify)
	assert.Equal(t, 2, o.MaxRounds)

	/* negative rounds are rejected */
	_, err := options(newFlagCmd(t, "--max-rounds", "-3"))
	assert.Error(t, err)
}

func TestCommands(t *testing.T) {
	src := writeFile(t, "main.ir", testProgram)
	cfg := writeFile(t, "ssac.toml", "verify = true\n")

	/* optimize and print */
	var out, errs bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errs)
	require.NoError(t, execute([]string{"opt", "--config", cfg, src}))
	assert.Contains(t, out.String(), "func main(")
	assert.NotContains(t, out.String(), "phi")

	/* execute the optimized function */
	out.Reset()
	require.NoError(t, execute([]string{"run", "--config", cfg, "--arg", "4", src}))
	assert.Equal(t, "24\n", out.String())
	assert.Contains(t, errs.String(), "> report(24)")

	/* draw the input */
	out.Reset()
	require.NoError(t, execute([]string{"dot", src}))
	assert.Contains(t, out.String(), `digraph "main" {`)

	/* errors are returned */
	assert.Error(t, execute([]string{"run", "--func", "missing", src}))
	assert.Error(t, execute([]string{"opt", filepath.Join(t.TempDir(), "missing.ir")}))
}
