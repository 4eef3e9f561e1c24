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
    `fmt`
    `testing`

    `github.com/brianvoe/gofakeit/v6`
    `github.com/davecgh/go-spew/spew`
    `pgregory.net/rapid`

    `github.com/cloudwego/midend/internal/ir`
)

func dumpins(ins []ir.Instr) []string {
    ret := make([]string, len(ins))
    for i, v := range ins { ret[i] = v.String() }
    return ret
}

func dumpfn(t *testing.T, fn *ir.Function) {
    t.Logf("function @%s:\n%s", fn.Name, fn)
    if testing.Verbose() {
        t.Log(spew.Sdump(fn.Instrs))
    }
}

func blockids(bbs *Blocks) []BlockID {
    ret := make([]BlockID, bbs.Len())
    for i, bb := range bbs.List { ret[i] = bb.Id }
    return ret
}

func mustCFG(t *testing.T, fn *ir.Function, policy SuccessorPolicy) *CFG {
    bbs, err := Blockify(fn.Name, fn.Instrs)
    if err != nil {
        t.Fatal(err)
    }
    return BuildCFG(bbs, policy)
}

// drawInstrs draws a random instruction stream with unique labels.
func drawInstrs(t *rapid.T) []ir.Instr {
    n := rapid.IntRange(0, 48).Draw(t, "n")
    nl := rapid.IntRange(1, 6).Draw(t, "labels")
    vars := []string { "a", "b", "c", "d" }
    used := make(map[string]bool)
    ret := make([]ir.Instr, 0, n)

    /* random instructions */
    for i := 0; i < n; i++ {
        switch rapid.IntRange(0, 5).Draw(t, "kind") {
            case 0: {
                lb := fmt.Sprintf("L%d", rapid.IntRange(0, nl - 1).Draw(t, "label"))
                if !used[lb] {
                    used[lb] = true
                    ret = append(ret, &ir.Label { Name: lb })
                }
            }
            case 1: {
                op := rapid.SampledFrom([]string { ir.OpJmp, ir.OpBr, ir.OpRet }).Draw(t, "term")
                to := fmt.Sprintf("L%d", rapid.IntRange(0, nl - 1).Draw(t, "target"))
                ret = append(ret, &ir.Terminator { Op: op, Labels: []string { to } })
            }
            case 2: {
                v := ir.Int(int64(rapid.IntRange(0, 3).Draw(t, "value")))
                ret = append(ret, &ir.ValueOp { Dest: rapid.SampledFrom(vars).Draw(t, "dest"), Type: "int", Op: ir.OpConst, Value: &v })
            }
            case 3: {
                x := rapid.SampledFrom(vars).Draw(t, "x")
                y := rapid.SampledFrom(vars).Draw(t, "y")
                ret = append(ret, &ir.ValueOp { Dest: rapid.SampledFrom(vars).Draw(t, "dest"), Type: "int", Op: ir.OpAdd, Args: []string { x, y } })
            }
            default: {
                ret = append(ret, &ir.EffectOp { Op: "print", Args: []string { rapid.SampledFrom(vars).Draw(t, "arg") } })
            }
        }
    }

    return ret
}

// fakeStraightLine builds a random straight-line function in which every
// variable is defined once, the shape the optimizer sees after renumbering.
func fakeStraightLine(seed int64, n int) *ir.Function {
    fk := gofakeit.New(seed)
    vars := []string { "p", "q" }
    b := ir.CreateBuilder("fake", ir.Arg { Name: "p", Type: "int" }, ir.Arg { Name: "q", Type: "int" })

    /* random definitions */
    for i := 0; i < n; i++ {
        dst := fmt.Sprintf("v%d", i)
        x := fk.RandomString(vars)
        y := fk.RandomString(vars)

        /* pick the operation */
        switch fk.Number(0, 7) {
            case 0  : b.Const(dst, "int", ir.Int(int64(fk.Number(0, 2))))
            case 1  : b.Add(dst, x, y)
            case 2  : b.Mul(dst, x, y)
            case 3  : b.Sub(dst, x, y)
            case 4  : b.Div(dst, x, y)
            case 5  : b.Id(dst, "int", x)
            case 6  : b.Call(dst, "int", "f", x)
            default : b.Print(x); continue
        }

        /* the new variable can be used from now on */
        vars = append(vars, dst)
    }

    /* keep some of them alive */
    if fk.Bool() {
        b.Print(vars[len(vars) - 1])
    }

    return b.Ret().Build()
}
