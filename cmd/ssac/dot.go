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
	"github.com/spf13/cobra"
)

var dotCmd = &cobra.Command{
	Use:   "dot [flags] <file.ir>",
	Short: "Draw the control flow graph of every function as it is",
	Args:  cobra.ExactArgs(1),
	RunE:  runDot,
}

func runDot(cmd *cobra.Command, args []string) error {
	fns, err := load(args[0])
	if err != nil {
		return err
	}
	for _, fn := range fns {
		fmt.Fprintln(cmd.OutOrStdout(), debug.Dot(fn))
	}
	return nil
}
