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
    `errors`
    `testing`

    `github.com/stretchr/testify/require`
    `pgregory.net/rapid`

    `github.com/cloudwego/midend/internal/ir`
    `github.com/cloudwego/midend/internal/utils`
)

func mustDCE(t *testing.T, fn *ir.Function) *ir.Function {
    ret, err := DCE{}.Apply(fn)
    require.NoError(t, err)
    dumpfn(t, ret)
    return ret
}

func TestDCE_UnusedDefinitions(t *testing.T) {
    fn := ir.CreateBuilder("main").
        Const("a", "int", ir.Int(1)).
        Const("b", "int", ir.Int(2)).
        Add("c", "a", "a").
        Add("d", "c", "c").
        Call("e", "int", "f", "a").
        Print("a").
        Build()

    /* the chain d -> c dies in two sweeps, calls are not special */
    require.Equal(t, []string {
        "a: int = const 1;",
        "print a;",
    }, dumpins(mustDCE(t, fn).Instrs))
}

func TestDCE_KeepsEffectsAndTerminators(t *testing.T) {
    fn := ir.CreateBuilder("main", params("x")...).
        Effect("store", "x", "x").
        Label("L").
        Br("x", "L", "M").
        Label("M").
        Ret("x").
        Build()
    require.Equal(t, dumpins(fn.Instrs), dumpins(mustDCE(t, fn).Instrs))
}

func TestDCE_UnreachableFragment(t *testing.T) {
    fn := ir.CreateBuilder("main").
        Jmp("L").
        Const("x", "int", ir.Int(1)).
        Print("x").
        Label("L").
        Ret().
        Build()
    require.Equal(t, []string {
        "jmp .L;",
        ".L:",
        "ret;",
    }, dumpins(mustDCE(t, fn).Instrs))
}

func TestDCE_Renumbering(t *testing.T) {
    fn := ir.CreateBuilder("main").
        Const("x", "int", ir.Int(1)).
        Print("x").
        Const("x", "int", ir.Int(2)).
        Ret().
        Build()

    /* the second "x" is a different variable that is never used */
    require.Equal(t, []string {
        "x: int = const 1;",
        "print x;",
        "ret;",
    }, dumpins(mustDCE(t, fn).Instrs))
}

func TestDCE_DoesNotModifyInput(t *testing.T) {
    fn := ir.CreateBuilder("main").
        Const("x", "int", ir.Int(1)).
        Const("x", "int", ir.Int(2)).
        Ret().
        Build()
    exp := dumpins(fn.Instrs)
    mustDCE(t, fn)
    require.Equal(t, exp, dumpins(fn.Instrs))
}

func TestDCE_Monotonic(t *testing.T) {
    rapid.Check(t, func(t *rapid.T) {
        fn := &ir.Function { Name: "main", Instrs: drawInstrs(t) }
        ret, err := DCE{}.Apply(fn)
        require.NoError(t, err)
        require.LessOrEqual(t, len(ret.Instrs), len(fn.Instrs))

        /* a second run has nothing more to remove */
        again, err := DCE{}.Apply(ret)
        require.NoError(t, err)
        require.Equal(t, len(ret.Instrs), len(again.Instrs))
    })
}

func TestDCE_Malformed(t *testing.T) {
    fn := &ir.Function { Name: "main", Instrs: []ir.Instr { nil } }
    _, err := DCE{}.Apply(fn)
    require.True(t, errors.Is(err, utils.MalformedInstructionError{}))
}

func TestRenumber(t *testing.T) {
    fn := ir.CreateBuilder("main", params("p")...).
        Const("x", "int", ir.Int(1)).
        Op("x", ir.Untyped, "add", "x", "p").
        Const("x_1", "int", ir.Int(0)).
        Op("p", ir.Untyped, "add", "p", "x").
        Print("x", "p", "x_1").
        Build()
    require.Equal(t, []string {
        "x: int = const 1;",
        "x_2: int = add x p;",
        "x_1: int = const 0;",
        "p_1: int = add p x_2;",
        "print x_2 p_1 x_1;",
    }, dumpins(Renumber(fn.Clone()).Instrs))
}

func TestOptimize_EndToEnd(t *testing.T) {
    fn := ir.CreateBuilder("main").
        Const("a", "int", ir.Int(4)).
        Const("b", "int", ir.Int(2)).
        Const("z", "int", ir.Int(0)).
        Add("c", "a", "b").
        Add("d", "b", "a").
        Add("e", "d", "c").
        Sub("f", "c", "d").
        Print("e").
        Ret().
        Build()
    ret, err := Optimize(fn, 16)
    require.NoError(t, err)
    dumpfn(t, ret)
    require.Equal(t, []string {
        "a: int = const 4;",
        "b: int = const 2;",
        "c: int = add a b;",
        "e: int = add c c;",
        "print e;",
        "ret;",
    }, dumpins(ret.Instrs))

    /* a converged function is a fixpoint */
    again, err := Optimize(ret, 16)
    require.NoError(t, err)
    require.True(t, Equal(ret, again))
}

func TestOptimize_Random(t *testing.T) {
    for seed := int64(0); seed < 100; seed++ {
        fn := fakeStraightLine(seed, 32)
        ret, err := Optimize(fn, 64)
        require.NoError(t, err, "seed %d", seed)
        require.LessOrEqual(t, len(ret.Instrs), len(fn.Instrs))
    }
}

func TestFixpoint_NonConvergence(t *testing.T) {
    grow := func(fn *ir.Function) (*ir.Function, error) {
        ret := fn.Clone()
        ret.Instrs = append(ret.Instrs, &ir.EffectOp { Op: "print" })
        return ret, nil
    }
    _, err := fixpoint("grow", ir.CreateBuilder("main").Build(), 8, grow)
    require.Error(t, err)
    require.True(t, errors.Is(err, utils.InternalError { Kind: utils.NonConvergence }))
    require.Contains(t, err.Error(), "grow")
}

func TestFixpoint_Propagates(t *testing.T) {
    fail := func(fn *ir.Function) (*ir.Function, error) {
        return nil, utils.EMalformed(fn.Name, 0, "broken")
    }
    _, err := fixpoint("fail", ir.CreateBuilder("main").Build(), 8, fail)
    require.True(t, errors.Is(err, utils.MalformedInstructionError{}))
}

func TestPassNames(t *testing.T) {
    require.Equal(t, []string { "Dead Code Elimination", "Local Value Numbering" }, PassNames())
}
