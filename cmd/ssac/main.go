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

// Command ssac reads functions in the textual IR format, optimizes them and
// prints, draws or executes the result.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/cloudwego/ssac"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "ssac",
	Short:         "SSA optimizer for the textual IR",
	Long:          `ssac converts IR functions into SSA form, optimizes them and converts them back.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

var errorColor = color.New(color.FgRed, color.Bold)

func init() {
	rootCmd.PersistentFlags().String("config", "", "TOML configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log every pass")
	rootCmd.PersistentFlags().Bool("verify", false, "verify the function after every pass")
	rootCmd.PersistentFlags().Int("max-rounds", -1, "maximum optimization rounds, 0 means unlimited")
	rootCmd.AddCommand(optCmd, runCmd, dotCmd)
}

func execute(args []string) (err error) {
	defer ssac.Recover(&err)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func main() {
	var ie *ssac.InternalError
	err := execute(os.Args[1:])

	/* internal errors are bugs of the optimizer */
	switch {
	case err == nil:
		return
	case errors.As(err, &ie):
		fmt.Fprintf(os.Stderr, "%s %v\n", errorColor.Sprint("internal error:"), ie)
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "%s %v\n", errorColor.Sprint("error:"), err)
		os.Exit(1)
	}
}
