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
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cloudwego/midend"
	"github.com/cloudwego/midend/debug"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "midend",
	Short: "Optimizations and analyses for Bril programs",
	Long: `midend reads a Bril program, runs one pass on every function and writes
the result to stdout. Transforming passes emit the program, analyses emit a
textual report.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if viper.GetBool("stats") {
			fmt.Fprintf(os.Stderr, "%+v\n", debug.GetStats())
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is .midend.yaml)")
	flags.String("log-level", "warning", "log level (debug, info, warning, error)")
	flags.StringP("format", "f", "json", "input format (json, thrift)")
	flags.StringP("output", "o", "json", "output format of transformed programs (json, thrift)")
	flags.Int("max-iterations", 0, "maximum rounds of the optimizer (0 = default)")
	flags.IntP("parallel", "p", 0, "number of functions processed at the same time (0 = auto)")
	flags.Bool("stats", false, "print pass statistics to stderr")

	for _, key := range []string{"log-level", "format", "output", "max-iterations", "parallel", "stats"} {
		cobra.CheckErr(viper.BindPFlag(key, flags.Lookup(key)))
	}

	rootCmd.AddCommand(
		newTransformCommand("opt", "Run DCE and LVN until the program stops changing", midend.Optimize),
		newTransformCommand("lvn", "Run local value numbering once", midend.ValueNumbering),
		newTransformCommand("dce", "Run dead code elimination once", midend.EliminateDeadCode),
		newTransformCommand("ssa", "Convert every function into SSA form", midend.ToSSA),
		newDominanceCommand(),
		newLivenessCommand(),
	)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".midend")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("MIDEND")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	if err := viper.ReadInConfig(); err == nil {
		logrus.WithField("file", viper.ConfigFileUsed()).Debug("using config file")
	}
}

func setup(cmd *cobra.Command, args []string) error {
	lv, err := logrus.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return err
	}

	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(lv)

	if viper.GetBool("stats") {
		debug.ResetStats()
	}
	return nil
}

func options() []midend.Option {
	var ret []midend.Option
	if n := viper.GetInt("max-iterations"); n > 0 {
		ret = append(ret, midend.WithMaxIterations(n))
	}
	if n := viper.GetInt("parallel"); n > 0 {
		ret = append(ret, midend.WithParallelism(n))
	}
	return ret
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
