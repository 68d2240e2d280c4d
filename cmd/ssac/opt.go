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

	"github.com/cloudwego/ssac/debug"
	"github.com/cloudwego/ssac/ir"
	"github.com/spf13/cobra"
)

var optCmd = &cobra.Command{
	Use:   "opt [flags] <file.ir>",
	Short: "Optimize every function and print the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runOpt,
}

func init() {
	optCmd.Flags().String("emit", "ir", "output format (ir|dot)")
	optCmd.Flags().Bool("stats", false, "print optimizer statistics")
}

func runOpt(cmd *cobra.Command, args []string) error {
	emit, err := cmd.Flags().GetString("emit")
	if err != nil {
		return err
	} else if emit != "ir" && emit != "dot" {
		return fmt.Errorf("unsupported output format: %s", emit)
	}

	/* optimize everything */
	fns, err := compile(cmd, args[0])
	if err != nil {
		return err
	}

	/* print the result */
	out := cmd.OutOrStdout()
	if emit == "ir" {
		fmt.Fprint(out, ir.PrintAll(fns))
	} else {
		for _, fn := range fns {
			fmt.Fprintln(out, debug.Dot(fn))
		}
	}

	/* optimizer statistics */
	if stats, _ := cmd.Flags().GetBool("stats"); stats {
		st := debug.GetStats()
		fmt.Fprintf(cmd.ErrOrStderr(), "# phis=%d bridges=%d splits=%d\n", st.SSA.Phis, st.SSA.Bridges, st.SSA.Splits)
		fmt.Fprintf(cmd.ErrOrStderr(), "# blocks: removed=%d merged=%d\n", st.Blocks.Removed, st.Blocks.Merged)
		fmt.Fprintf(cmd.ErrOrStderr(), "# values: folded=%d removed=%d\n", st.Values.Folded, st.Values.Removed)
	}
	return nil
}
