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
    `bytes`
    `errors`
    `fmt`
    `testing`

    `github.com/brianvoe/gofakeit/v6`
    `github.com/google/go-cmp/cmp`
    `github.com/google/go-cmp/cmp/cmpopts`
    `github.com/stretchr/testify/require`

    `github.com/cloudwego/midend/internal/ir`
)

// fakeProgram creates n straight line functions with plenty of redundancy.
func fakeProgram(seed int64, n int) *Program {
    fk := gofakeit.New(seed)
    ret := new(Program)

    /* every function reads its parameters and combines them randomly */
    for i := 0; i < n; i++ {
        b := ir.CreateBuilder(fmt.Sprintf("f%d", i), ir.Arg { Name: "a", Type: "int" }, ir.Arg { Name: "b", Type: "int" })
        vars := []string { "a", "b" }
        for j := fk.Number(1, 24); j > 0; j-- {
            x := vars[fk.Number(0, len(vars) - 1)]
            y := vars[fk.Number(0, len(vars) - 1)]
            v := fmt.Sprintf("v%d", len(vars))
            switch fk.Number(0, 3) {
                case 0  : b.Add(v, x, y)
                case 1  : b.Mul(v, x, y)
                case 2  : b.Sub(v, x, y)
                default : b.Const(v, "int", ir.Int(int64(fk.Number(0, 3))))
            }
            vars = append(vars, v)
        }
        b.Print(vars[len(vars) - 1])
        ret.Functions = append(ret.Functions, b.Ret().Build())
    }
    return ret
}

func requireSame(t *testing.T, exp interface{}, act interface{}) {
    require.True(t, cmp.Equal(exp, act, cmpopts.EquateEmpty()), cmp.Diff(exp, act, cmpopts.EquateEmpty()))
}

func TestMidend_ParallelMatchesSequential(t *testing.T) {
    p := fakeProgram(1, 64)
    seq, err := Optimize(p, WithParallelism(1))
    require.NoError(t, err)
    par, err := Optimize(p, WithParallelism(8))
    require.NoError(t, err)
    requireSame(t, seq, par)
    require.Len(t, par.Functions, 64)
    for i, fn := range par.Functions {
        require.Equal(t, fmt.Sprintf("f%d", i), fn.Name)
    }

    /* the input is left alone */
    requireSame(t, fakeProgram(1, 64), p)
}

func TestMidend_AllPasses(t *testing.T) {
    p := fakeProgram(2, 16)
    for _, par := range []int { 1, 4 } {
        t.Run(fmt.Sprintf("parallel=%d", par), func(t *testing.T) {
            lvn, err := ValueNumbering(p, WithParallelism(par))
            require.NoError(t, err)
            require.LessOrEqual(t, lvn.Len(), p.Len())
            dce, err := EliminateDeadCode(p, WithParallelism(par))
            require.NoError(t, err)
            require.LessOrEqual(t, dce.Len(), p.Len())
            ssa, err := ToSSA(p, WithParallelism(par))
            require.NoError(t, err)
            require.Equal(t, p.Len(), ssa.Len())
            dom, err := Dominators(p, WithParallelism(par))
            require.NoError(t, err)
            require.Len(t, dom, 16)
            live, err := LiveVariables(p, WithParallelism(par))
            require.NoError(t, err)
            require.Len(t, live, 16)
            require.Equal(t, "f3", live[3].Func)
        })
    }
}

func TestMidend_FirstErrorWins(t *testing.T) {
    p := fakeProgram(3, 32)
    p.Functions[7].Instrs = append(p.Functions[7].Instrs, &ir.Label {})
    p.Functions[21].Instrs = append(p.Functions[21].Instrs, &ir.Label {})
    for _, par := range []int { 1, 8 } {
        _, err := Optimize(p, WithParallelism(par))
        require.Error(t, err)
        require.True(t, errors.Is(err, ErrMalformed))
        require.False(t, errors.Is(err, ErrInternal))
        require.Equal(t, "f7", err.(MalformedInstructionError).Func)
    }
}

func TestMidend_WorkerPanic(t *testing.T) {
    p := fakeProgram(4, 8)
    p.Functions[5] = nil
    for _, par := range []int { 1, 4 } {
        _, err := ValueNumbering(p, WithParallelism(par))
        require.Error(t, err)
        require.True(t, errors.Is(err, ErrWorkerPanic), "%v", err)
        require.True(t, errors.Is(err, ErrInternal))
        require.False(t, errors.Is(err, ErrNonConvergence))
    }
}

func TestMidend_NonConvergence(t *testing.T) {
    fn := ir.CreateBuilder("main").
        Const("x", "int", ir.Int(1)).
        Const("y", "int", ir.Int(2)).
        Print("x").
        Build()
    _, err := Optimize(&Program { Functions: []*Function { fn } }, WithMaxIterations(1))
    require.True(t, errors.Is(err, ErrNonConvergence), "%v", err)
    require.Equal(t, "main", err.(InternalError).Func)

    /* two rounds are enough */
    ret, err := Optimize(&Program { Functions: []*Function { fn } }, WithMaxIterations(2))
    require.NoError(t, err)
    require.Equal(t, 2, ret.Len())
}

func TestMidend_InvalidOptions(t *testing.T) {
    require.Panics(t, func() { WithMaxIterations(0) })
    require.Panics(t, func() { WithParallelism(-1) })
}

func TestMidend_DefaultOptions(t *testing.T) {
    old := SetMaxIterations(1)
    defer SetMaxIterations(old)
    fn := ir.CreateBuilder("main").
        Const("x", "int", ir.Int(1)).
        Const("y", "int", ir.Int(2)).
        Print("x").
        Build()
    _, err := Optimize(&Program { Functions: []*Function { fn } })
    require.True(t, errors.Is(err, ErrNonConvergence))
    require.Equal(t, 1, SetMaxIterations(old))
}

func TestMidend_Codecs(t *testing.T) {
    p := fakeProgram(5, 4)
    buf := bytes.NewBuffer(nil)
    require.NoError(t, EncodeJSON(buf, p))
    pj, err := DecodeJSON(buf)
    require.NoError(t, err)
    requireSame(t, p, pj)
    mem, err := EncodeThrift(p)
    require.NoError(t, err)
    pt, err := DecodeThrift(mem)
    require.NoError(t, err)
    requireSame(t, p, pt)
}
