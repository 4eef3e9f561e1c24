/*
 * Copyright 2022 ByteDance Inc.
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

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cloudwego/midend"
)

type transformFunc func(p *midend.Program, options ...midend.Option) (*midend.Program, error)

func readProgram(path string) (*midend.Program, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open program")
	}
	defer fp.Close()

	switch f := viper.GetString("format"); f {
	case "json":
		return midend.DecodeJSON(fp)
	case "thrift":
		buf, err := io.ReadAll(fp)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", path)
		}
		return midend.DecodeThrift(buf)
	default:
		return nil, errors.Errorf("unknown input format %q", f)
	}
}

func writeProgram(w io.Writer, p *midend.Program) error {
	switch f := viper.GetString("output"); f {
	case "json":
		return midend.EncodeJSON(w, p)
	case "thrift":
		buf, err := midend.EncodeThrift(p)
		if err != nil {
			return err
		}
		_, err = w.Write(buf)
		return errors.Wrap(err, "write program")
	default:
		return errors.Errorf("unknown output format %q", f)
	}
}

func newTransformCommand(name string, short string, pass transformFunc) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <file>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readProgram(args[0])
			if err != nil {
				return err
			}

			ret, err := pass(p, options()...)
			if err != nil {
				return err
			}

			logrus.WithFields(logrus.Fields{
				"pass":   name,
				"before": p.Len(),
				"after":  ret.Len(),
			}).Info("program transformed")
			return writeProgram(cmd.OutOrStdout(), ret)
		},
	}
}

func newDominanceCommand() *cobra.Command {
	var dot bool
	cmd := &cobra.Command{
		Use:   "dom <file>",
		Short: "Print dominators, the dominator tree and the dominance frontiers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readProgram(args[0])
			if err != nil {
				return err
			}

			ret, err := midend.Dominators(p, options()...)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, dom := range ret {
				var s string
				if dot {
					if s, err = dom.DOT(); err != nil {
						return errors.Wrapf(err, "render dominator tree of %s", dom.Func)
					}
				} else {
					s = dom.String()
				}
				fmt.Fprintf(w, "@%s\n%s\n", dom.Func, s)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dot, "dot", false, "render the dominator trees in the Graphviz format")
	return cmd
}

func newLivenessCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "live <file>",
		Short: "Print the live variables of every block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readProgram(args[0])
			if err != nil {
				return err
			}

			ret, err := midend.LiveVariables(p, options()...)
			if err != nil {
				return err
			}

			for _, lv := range ret {
				fmt.Fprintf(cmd.OutOrStdout(), "@%s\n%s\n", lv.Func, lv.String())
			}
			return nil
		},
	}
}
