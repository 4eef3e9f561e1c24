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

package ir

import (
    `errors`
    `testing`

    `github.com/google/go-cmp/cmp`
    `github.com/google/go-cmp/cmp/cmpopts`
    `github.com/stretchr/testify/require`

    `github.com/cloudwego/midend/internal/utils`
)

func TestIR_FunctionString(t *testing.T) {
    fn := CreateBuilder("main", Arg { Name: "n", Type: "int" }).
        Returns("int").
        Const("one", "int", Int(1)).
        Label("top").
        Op("c", "bool", "lt", "n", "one").
        Br("c", "top", "done").
        Label("done").
        Call("r", "int", "fact", "n").
        Ret("r").
        Build()
    require.Equal(t, `@main(n: int): int {
    one: int = const 1;
.top:
    c: bool = lt n one;
    br c .top .done;
.done:
    r: int = call @fact n;
    ret r;
}`, fn.String())
}

func TestIR_LiteralString(t *testing.T) {
    require.Equal(t, "-3", Int(-3).String())
    require.Equal(t, "true", Bool(true).String())
    require.Equal(t, "0.5", Float(0.5).String())
    require.Equal(t, "'a'", Char('a').String())
}

func TestIR_UntypedValue(t *testing.T) {
    v := &ValueOp { Dest: "x", Op: OpId, Args: []string { "y" } }
    require.Equal(t, "x = id y;", v.String())
}

func TestIR_PointerTypes(t *testing.T) {
    p := PtrTo(PtrTo("int"))
    require.Equal(t, Type("ptr<ptr<int>>"), p)
    e, ok := p.Elem()
    require.True(t, ok)
    require.Equal(t, PtrTo("int"), e)
    _, ok = Type("int").Elem()
    require.False(t, ok)
}

func TestIR_Targets(t *testing.T) {
    require.Equal(t, []string { "a", "b" }, (&Terminator { Op: OpBr, Args: []string { "c" }, Labels: []string { "a", "b" } }).Targets())
    require.Nil(t, (&Terminator { Op: OpRet, Labels: []string { "a" } }).Targets())
}

func TestIR_CloneIsDeep(t *testing.T) {
    fn := CreateBuilder("main", Arg { Name: "a", Type: "int" }).
        Const("x", "int", Int(1)).
        Add("y", "x", "a").
        Print("y").
        Ret().
        Build()
    dup := fn.Clone()
    require.True(t, cmp.Equal(fn, dup, cmpopts.EquateEmpty()))

    /* mutating the copy leaves the original alone */
    dup.Instrs[0].(*ValueOp).Value.Int = 2
    dup.Instrs[1].(*ValueOp).Args[0] = "z"
    dup.Instrs[2].(*EffectOp).Args[0] = "z"
    dup.Args[0].Name = "b"
    require.Equal(t, "x: int = const 1;", fn.Instrs[0].String())
    require.Equal(t, "y: int = add x a;", fn.Instrs[1].String())
    require.Equal(t, "print y;", fn.Instrs[2].String())
    require.Equal(t, "a", fn.Args[0].Name)
}

func TestIR_CloneKeepsNil(t *testing.T) {
    ins := CloneInstrs([]Instr { nil, &Label { Name: "x" } })
    require.Nil(t, ins[0])
    require.Equal(t, ".x:", ins[1].String())
}

func TestIR_ProgramLen(t *testing.T) {
    p := &Program { Functions: []*Function {
        CreateBuilder("a").Print().Ret().Build(),
        CreateBuilder("b").Ret().Build(),
    }}
    require.Equal(t, 3, p.Len())
    require.Equal(t, "@a() {\n    print;\n    ret;\n}\n@b() {\n    ret;\n}", p.String())
}

func TestIR_Validate(t *testing.T) {
    tests := []struct {
        name string
        ins  Instr
    } {
        { "nil"             , nil },
        { "empty label"     , &Label {} },
        { "bad terminator"  , &Terminator { Op: "print" } },
        { "empty op"        , &ValueOp { Dest: "x" } },
        { "no destination"  , &ValueOp { Op: OpAdd, Args: []string { "a", "b" } } },
        { "value terminator", &ValueOp { Dest: "x", Op: OpRet } },
        { "const no value"  , &ValueOp { Dest: "x", Op: OpConst } },
        { "effect no op"    , &EffectOp {} },
        { "effect jump"     , &EffectOp { Op: OpJmp, Labels: []string { "a" } } },
    }
    for _, tc := range tests {
        t.Run(tc.name, func(t *testing.T) {
            fn := &Function { Name: "main", Instrs: []Instr { &Label { Name: "ok" }, tc.ins } }
            err := fn.Validate()
            require.Error(t, err)
            require.True(t, errors.Is(err, utils.MalformedInstructionError{}))
            require.Equal(t, 1, err.(utils.MalformedInstructionError).Index)
        })
    }
}

func TestIR_ValidateAccepts(t *testing.T) {
    fn := CreateBuilder("main").
        Label("a").
        Const("x", "bool", Bool(true)).
        Effect("nop").
        Br("x", "a", "b").
        Label("b").
        Ret().
        Build()
    require.NoError(t, fn.Validate())
}
