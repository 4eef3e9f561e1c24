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

package irio

import (
    `bytes`
    `encoding/json`
    `io`
    `strconv`
    `strings`
    `unicode/utf8`

    `github.com/pkg/errors`

    `github.com/cloudwego/midend/internal/ir`
    `github.com/cloudwego/midend/internal/utils`
)

type _JsonProgram struct {
    Functions []_JsonFunction `json:"functions"`
}

type _JsonFunction struct {
    Name   string       `json:"name"`
    Args   []_JsonArg   `json:"args,omitempty"`
    Type   *_JsonType   `json:"type,omitempty"`
    Instrs []_JsonInstr `json:"instrs"`
}

type _JsonArg struct {
    Name string    `json:"name"`
    Type _JsonType `json:"type"`
}

type _JsonInstr struct {
    Op     *string         `json:"op,omitempty"`
    Label  *string         `json:"label,omitempty"`
    Dest   string          `json:"dest,omitempty"`
    Type   *_JsonType      `json:"type,omitempty"`
    Args   []string        `json:"args,omitempty"`
    Funcs  []string        `json:"funcs,omitempty"`
    Labels []string        `json:"labels,omitempty"`
    Value  json.RawMessage `json:"value,omitempty"`
}

// _JsonType is either a primitive type name or a {"ptr": T} object.
type _JsonType struct {
    t ir.Type
}

func (self _JsonType) MarshalJSON() ([]byte, error) {
    if e, ok := self.t.Elem(); ok {
        return json.Marshal(map[string]_JsonType { "ptr": { e } })
    } else {
        return json.Marshal(string(self.t))
    }
}

func (self *_JsonType) UnmarshalJSON(buf []byte) error {
    var s string
    var p map[string]_JsonType

    /* primitive types */
    if err := json.Unmarshal(buf, &s); err == nil {
        self.t = ir.Type(s)
        return nil
    }

    /* parameterized types */
    if err := json.Unmarshal(buf, &p); err != nil {
        return errors.Wrap(err, "invalid type")
    } else if e, ok := p["ptr"]; !ok || len(p) != 1 {
        return errors.Errorf("unsupported parameterized type: %s", buf)
    } else {
        self.t = ir.PtrTo(e.t)
        return nil
    }
}

func typeref(t ir.Type) *_JsonType {
    if t == ir.Untyped {
        return nil
    } else {
        return &_JsonType { t }
    }
}

func typeof(t *_JsonType) ir.Type {
    if t == nil {
        return ir.Untyped
    } else {
        return t.t
    }
}

// DecodeJSON reads a program in the Bril JSON representation.
func DecodeJSON(r io.Reader) (*ir.Program, error) {
    var src _JsonProgram
    dec := json.NewDecoder(r)
    dec.UseNumber()

    /* parse the document */
    if err := dec.Decode(&src); err != nil {
        return nil, errors.Wrap(err, "cannot parse program")
    }

    /* convert every function */
    ret := &ir.Program { Functions: make([]*ir.Function, 0, len(src.Functions)) }
    for _, fn := range src.Functions {
        if f, err := decodeFunction(fn); err != nil {
            return nil, err
        } else {
            ret.Functions = append(ret.Functions, f)
        }
    }

    return ret, nil
}

func decodeFunction(src _JsonFunction) (*ir.Function, error) {
    fn := &ir.Function {
        Name   : src.Name,
        Type   : typeof(src.Type),
        Instrs : make([]ir.Instr, 0, len(src.Instrs)),
    }

    /* function parameters */
    for _, a := range src.Args {
        fn.Args = append(fn.Args, ir.Arg { Name: a.Name, Type: a.Type.t })
    }

    /* function body */
    for i, v := range src.Instrs {
        if ins, err := decodeInstr(fn.Name, i, v); err != nil {
            return nil, err
        } else {
            fn.Instrs = append(fn.Instrs, ins)
        }
    }

    return fn, nil
}

func decodeInstr(fn string, idx int, v _JsonInstr) (ir.Instr, error) {
    var ins ir.Instr

    /* an instruction is discriminated by the presence of "op" or "label" */
    switch {
        case v.Op == nil && v.Label == nil: {
            return nil, utils.EMalformed(fn, idx, "instruction has neither an operation nor a label")
        }

        /* labels */
        case v.Op == nil: {
            ins = &ir.Label { Name: *v.Label }
        }

        /* terminators */
        case ir.IsTerminatorOp(*v.Op): {
            ins = &ir.Terminator {
                Op     : *v.Op,
                Args   : v.Args,
                Labels : v.Labels,
            }
        }

        /* effect operations */
        case v.Dest == "": {
            ins = &ir.EffectOp {
                Op     : *v.Op,
                Args   : v.Args,
                Funcs  : v.Funcs,
                Labels : v.Labels,
            }
        }

        /* value operations */
        default: {
            p := &ir.ValueOp {
                Dest   : v.Dest,
                Type   : typeof(v.Type),
                Op     : *v.Op,
                Args   : v.Args,
                Funcs  : v.Funcs,
                Labels : v.Labels,
            }

            /* parse the literal if any */
            if len(v.Value) != 0 {
                if lit, err := decodeLiteral(v.Value, p.Type); err != nil {
                    return nil, utils.EMalformed(fn, idx, err.Error())
                } else {
                    p.Value = &lit
                }
            }

            /* build the instruction */
            ins = p
        }
    }

    /* the rest of the checks are shared with the other decoders */
    if err := ir.Check(fn, idx, ins); err != nil {
        return nil, err
    } else {
        return ins, nil
    }
}

func decodeLiteral(buf json.RawMessage, t ir.Type) (ir.Literal, error) {
    var b bool
    var s string
    var n json.Number

    /* booleans */
    if err := json.Unmarshal(buf, &b); err == nil {
        return ir.Bool(b), nil
    }

    /* characters */
    if err := json.Unmarshal(buf, &s); err == nil {
        if r, size := utf8.DecodeRuneInString(s); size == 0 || size != len(s) {
            return ir.Literal{}, errors.Errorf("invalid char literal %q", s)
        } else {
            return ir.Char(r), nil
        }
    }

    /* numbers, floats are recognized by either the type or the spelling */
    dec := json.NewDecoder(bytes.NewReader(buf))
    dec.UseNumber()

    /* parse as number */
    if err := dec.Decode(&n); err != nil {
        return ir.Literal{}, errors.Errorf("invalid literal %s", buf)
    }

    /* check for floating point values */
    if t == "float" || strings.ContainsAny(n.String(), ".eE") {
        if v, err := n.Float64(); err != nil {
            return ir.Literal{}, errors.Wrap(err, "invalid float literal")
        } else {
            return ir.Float(v), nil
        }
    }

    /* must be an integer */
    if v, err := n.Int64(); err != nil {
        return ir.Literal{}, errors.Wrap(err, "invalid int literal")
    } else {
        return ir.Int(v), nil
    }
}

func encodeLiteral(v ir.Literal) json.RawMessage {
    switch v.Kind {
        case ir.LitInt  : return json.RawMessage(strconv.FormatInt(v.Int, 10))
        case ir.LitBool : return json.RawMessage(strconv.FormatBool(v.Bool))
        case ir.LitChar : buf, _ := json.Marshal(string(v.Char)); return buf
    }

    /* floats must keep a decimal point to survive a round trip */
    s := strconv.FormatFloat(v.Float, 'g', -1, 64)
    if !strings.ContainsAny(s, ".eE") {
        s += ".0"
    }
    return json.RawMessage(s)
}

func encodeInstr(ins ir.Instr) _JsonInstr {
    switch v := ins.(type) {
        case *ir.Label: {
            return _JsonInstr { Label: &v.Name }
        }

        /* terminators */
        case *ir.Terminator: {
            return _JsonInstr {
                Op     : &v.Op,
                Args   : v.Args,
                Labels : v.Labels,
            }
        }

        /* effect operations */
        case *ir.EffectOp: {
            return _JsonInstr {
                Op     : &v.Op,
                Args   : v.Args,
                Funcs  : v.Funcs,
                Labels : v.Labels,
            }
        }

        /* value operations */
        case *ir.ValueOp: {
            ret := _JsonInstr {
                Op     : &v.Op,
                Dest   : v.Dest,
                Type   : typeref(v.Type),
                Args   : v.Args,
                Funcs  : v.Funcs,
                Labels : v.Labels,
            }

            /* constants */
            if v.Value != nil {
                ret.Value = encodeLiteral(*v.Value)
            }

            return ret
        }

        default: {
            panic("unreachable")
        }
    }
}

// EncodeJSON writes the program in the Bril JSON representation.
func EncodeJSON(w io.Writer, p *ir.Program) error {
    out := _JsonProgram { Functions: make([]_JsonFunction, 0, len(p.Functions)) }

    /* convert every function */
    for _, fn := range p.Functions {
        f := _JsonFunction {
            Name   : fn.Name,
            Type   : typeref(fn.Type),
            Instrs : make([]_JsonInstr, 0, len(fn.Instrs)),
        }

        /* function parameters */
        for _, a := range fn.Args {
            f.Args = append(f.Args, _JsonArg { Name: a.Name, Type: _JsonType { a.Type } })
        }

        /* function body */
        for _, ins := range fn.Instrs {
            f.Instrs = append(f.Instrs, encodeInstr(ins))
        }

        /* add to program */
        out.Functions = append(out.Functions, f)
    }

    /* serialize the program */
    enc := json.NewEncoder(w)
    enc.SetIndent("", "  ")
    return errors.Wrap(enc.Encode(out), "cannot write program")
}
