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

func TestBlockify_RoundTrip(t *testing.T) {
    rapid.Check(t, func(t *rapid.T) {
        ins := drawInstrs(t)
        bbs, err := Blockify("main", ins)
        require.NoError(t, err)
        require.Equal(t, ins, bbs.Flatten())
    })
}

func TestBlockify_Shape(t *testing.T) {
    rapid.Check(t, func(t *rapid.T) {
        bbs, err := Blockify("main", drawInstrs(t))
        require.NoError(t, err)
        seen := make(map[BlockID]bool)
        for _, bb := range bbs.List {
            require.NotEmpty(t, bb.Ins)
            require.False(t, seen[bb.Id], "duplicated block %s", bb.Id)
            seen[bb.Id] = true
            for i, v := range bb.Ins {
                if _, ok := v.(*ir.Terminator); ok {
                    require.Equal(t, len(bb.Ins) - 1, i, "terminator in the middle of %s", bb.Id)
                }
                if _, ok := v.(*ir.Label); ok {
                    require.Equal(t, 0, i, "label in the middle of %s", bb.Id)
                }
            }
        }
    })
}

func TestBlockify_Names(t *testing.T) {
    fn := ir.CreateBuilder("main").
        Const("a", "int", ir.Int(1)).
        Jmp("L").
        Print("a").
        Label("L").
        Ret().
        Build()
    bbs, err := Blockify(fn.Name, fn.Instrs)
    require.NoError(t, err)
    require.Equal(t, []BlockID { EntryBlock("main"), synthBlock(1), LabelBlock("L") }, blockids(bbs))
    require.True(t, bbs.List[0].Id.IsEntry())
    require.True(t, bbs.List[1].Id.IsSynthetic())
    require.True(t, bbs.List[2].Id.IsLabel())
    require.Equal(t, "_r1", bbs.List[1].Id.String())
    lb, ok := bbs.List[2].Label()
    require.True(t, ok)
    require.Equal(t, "L", lb)
    _, ok = bbs.List[1].Term()
    require.False(t, ok)
}

func TestBlockify_LabelNamedAfterFunction(t *testing.T) {
    fn := ir.CreateBuilder("main").
        Print("x").
        Label("main").
        Ret().
        Build()
    bbs, err := Blockify(fn.Name, fn.Instrs)
    require.NoError(t, err)
    require.Equal(t, []BlockID { EntryBlock("main"), LabelBlock("main") }, blockids(bbs))
}

func TestBlockify_Malformed(t *testing.T) {
    _, err := Blockify("main", []ir.Instr { &ir.Label { Name: "a" }, nil })
    require.Error(t, err)
    require.True(t, errors.Is(err, utils.MalformedInstructionError{}))
    var me utils.MalformedInstructionError
    require.True(t, errors.As(err, &me))
    require.Equal(t, 1, me.Index)

    _, err = Blockify("main", []ir.Instr { &ir.EffectOp {} })
    require.True(t, errors.Is(err, utils.MalformedInstructionError{}))

    _, err = Blockify("main", []ir.Instr { &ir.Terminator { Op: "print" } })
    require.True(t, errors.Is(err, utils.MalformedInstructionError{}))
}

func TestBlockify_DuplicateLabel(t *testing.T) {
    fn := ir.CreateBuilder("main").
        Label("L").
        Print("x").
        Label("L").
        Ret().
        Build()
    _, err := Blockify(fn.Name, fn.Instrs)
    require.True(t, errors.Is(err, utils.MalformedInstructionError{}))
}

func TestBlocks_Filter(t *testing.T) {
    fn := ir.CreateBuilder("main").
        Ret().
        Print("dead").
        Label("L").
        Ret().
        Build()
    bbs, err := Blockify(fn.Name, fn.Instrs)
    require.NoError(t, err)
    ret := bbs.Filter(func(bb *BasicBlock) bool { return !bb.Id.IsSynthetic() })
    require.Equal(t, []BlockID { EntryBlock("main"), LabelBlock("L") }, blockids(ret))
    _, ok := ret.Get(synthBlock(1))
    require.False(t, ok)
    require.Equal(t, []string { "ret;", ".L:", "ret;" }, dumpins(ret.Flatten()))
}
