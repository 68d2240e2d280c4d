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
	"strings"

	"github.com/cloudwego/ssac/internal/emu"
	"github.com/cloudwego/ssac/ir"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] <file.ir>",
	Short: "Optimize the functions and execute one of them",
	Args:  cobra.ExactArgs(1),
	RunE:  runExec,
}

func init() {
	runCmd.Flags().String("func", "main", "function to execute")
	runCmd.Flags().Int64Slice("arg", nil, "integer arguments")
	runCmd.Flags().Bool("raw", false, "execute the functions without optimizing them")
	runCmd.Flags().StringSlice("throw", nil, "callees that always throw")
}

// builtins is the environment of executed functions: every call is printed,
// callees named with --throw raise an exception, the others return their
// first argument.
func builtins(cmd *cobra.Command, throws []string) emu.Env {
	return emu.EnvFunc(func(callee string, args []emu.Value) (emu.Value, bool, error) {
		buf := make([]string, len(args))
		for i, v := range args {
			buf[i] = v.String()
		}

		/* print the call */
		fmt.Fprintf(cmd.ErrOrStderr(), "> %s(%s)\n", callee, strings.Join(buf, ", "))
		for _, v := range throws {
			if v == callee {
				return nil, true, nil
			}
		}

		/* return the first argument */
		if len(args) == 0 {
			return nil, false, nil
		} else {
			return args[0], false, nil
		}
	})
}

func runExec(cmd *cobra.Command, args []string) error {
	var err error
	var fns []*ir.Function
	flags := cmd.Flags()

	/* optimize unless asked not to */
	if raw, _ := flags.GetBool("raw"); raw {
		fns, err = load(args[0])
	} else {
		fns, err = compile(cmd, args[0])
	}
	if err != nil {
		return err
	}

	/* find the function */
	name, _ := flags.GetString("func")
	fn, err := lookup(fns, name)
	if err != nil {
		return err
	}

	/* convert the arguments */
	argv, _ := flags.GetInt64Slice("arg")
	vals := make([]emu.Value, len(argv))
	for i, v := range argv {
		vals[i] = ir.IntConst(v)
	}

	/* execute the function */
	throws, _ := flags.GetStringSlice("throw")
	ret, err := emu.Run(fn, builtins(cmd, throws), vals...)
	if err != nil {
		return err
	}

	/* print the outcome */
	switch {
	case ret.Thrown:
		fmt.Fprintln(cmd.OutOrStdout(), "throw")
	case ret.Value == nil:
		fmt.Fprintln(cmd.OutOrStdout(), "return")
	default:
		fmt.Fprintln(cmd.OutOrStdout(), ret.Value)
	}
	return nil
}
