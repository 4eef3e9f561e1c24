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

package midend

import (
    `fmt`

    `github.com/cloudwego/midend/internal/opts`
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

// WithMaxIterations sets the maximum number of DCE and LVN rounds Optimize
// performs on one function before reporting NonConvergence.
//
// The default value of this option is "4096".
func WithMaxIterations(n int) Option {
    if n <= 0 {
        panic(fmt.Sprintf("midend: invalid iteration limit: %d", n))
    } else {
        return func(o *opts.Options) { o.MaxIterations = n }
    }
}

// WithParallelism sets how many functions are processed at the same time.
//
// Set this option to "1" processes all the functions in the calling goroutine.
//
// The default value of this option is the number of CPUs.
func WithParallelism(n int) Option {
    if n <= 0 {
        panic(fmt.Sprintf("midend: invalid parallelism: %d", n))
    } else {
        return func(o *opts.Options) { o.Parallelism = n }
    }
}

// SetMaxIterations sets the default iteration limit for all runs from now on.
//
// This value can also be configured with the `MIDEND_MAX_ITERATIONS`
// environment variable.
//
// Returns the old opts.MaxIterations value.
func SetMaxIterations(n int) int {
    n, opts.MaxIterations = opts.MaxIterations, n
    return n
}

// SetParallelism sets the default parallelism for all runs from now on.
//
// This value can also be configured with the `MIDEND_PARALLELISM` environment
// variable.
//
// Returns the old opts.Parallelism value.
func SetParallelism(n int) int {
    n, opts.Parallelism = opts.Parallelism, n
    return n
}

func buildOptions(options []Option) opts.Options {
    ret := opts.GetDefaultOptions()
    for _, fn := range options { fn(&ret) }
    return ret
}
