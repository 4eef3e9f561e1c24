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

package opt

import (
    `github.com/google/go-cmp/cmp`
    `github.com/google/go-cmp/cmp/cmpopts`

    `github.com/cloudwego/midend/internal/ir`
    `github.com/cloudwego/midend/internal/utils`
)

// Pass transforms one function, the input function is never modified.
type Pass interface {
    Apply(fn *ir.Function) (*ir.Function, error)
}

type _PassDescriptor struct {
    pass Pass
    desc string
}

var _passes = [...]_PassDescriptor {
    { desc: "Dead Code Elimination"  , pass: new(DCE) },
    { desc: "Local Value Numbering"  , pass: new(LVN) },
}

var _equality = []cmp.Option {
    cmpopts.EquateEmpty(),
}

// Equal tells if two functions are structurally identical.
func Equal(a *ir.Function, b *ir.Function) bool {
    return cmp.Equal(a, b, _equality...)
}

func optimizeFunction(fn *ir.Function) (*ir.Function, error) {
    var err error
    for _, p := range _passes {
        if fn, err = p.pass.Apply(fn); err != nil {
            return nil, err
        }
    }
    return fn, nil
}

func fixpoint(pass string, fn *ir.Function, limit int, step func(*ir.Function) (*ir.Function, error)) (*ir.Function, error) {
    for i := 0; i < limit; i++ {
        ret, err := step(fn)
        if err != nil {
            return nil, err
        }

        /* stop when nothing changes */
        count(&FixpointIterations, 1)
        if Equal(fn, ret) {
            return ret, nil
        }

        /* next round */
        fn = ret
    }

    /* the passes broke their monotonicity */
    return nil, utils.ENonConvergence(pass, fn.Name, limit)
}

// Optimize applies DCE followed by LVN to the function repeatedly until the
// result stops changing. Failing to converge within limit rounds is an
// internal error.
func Optimize(fn *ir.Function, limit int) (*ir.Function, error) {
    return fixpoint("optimize", fn, limit, optimizeFunction)
}

// PassNames lists the passes Optimize runs in every round.
func PassNames() []string {
    ret := make([]string, len(_passes))
    for i, p := range _passes { ret[i] = p.desc }
    return ret
}
