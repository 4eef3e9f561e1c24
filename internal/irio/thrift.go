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
    `context`

    `github.com/apache/thrift/lib/go/thrift`
    `github.com/pkg/errors`

    `github.com/cloudwego/midend/internal/ir`
)

/** Thrift layout of a program:
 *
 *  struct Literal  { 1: byte kind, 2: i64 int, 3: bool bool, 4: double float, 5: i32 char }
 *  struct Instr    { 1: byte kind, 2: string op, 3: string dest, 4: string type, 5: list<string> args,
 *                    6: list<string> funcs, 7: list<string> labels, 8: string label, 9: Literal value }
 *  struct Arg      { 1: string name, 2: string type }
 *  struct Function { 1: string name, 2: list<Arg> args, 3: string type, 4: list<Instr> instrs }
 *  struct Program  { 1: list<Function> functions }
 */

const (
    _K_label int8 = iota
    _K_term
    _K_value
    _K_effect
)

type _ThriftWriter struct {
    p   thrift.TProtocol
    err error
}

func (self *_ThriftWriter) begin(name string) {
    if self.err == nil {
        self.err = self.p.WriteStructBegin(name)
    }
}

func (self *_ThriftWriter) end() {
    if self.err == nil {
        self.err = self.p.WriteFieldStop()
    }
    if self.err == nil {
        self.err = self.p.WriteStructEnd()
    }
}

func (self *_ThriftWriter) field(id int16, tt thrift.TType, fn func() error) {
    if self.err == nil {
        self.err = self.p.WriteFieldBegin("", tt, id)
    }
    if self.err == nil {
        self.err = fn()
    }
    if self.err == nil {
        self.err = self.p.WriteFieldEnd()
    }
}

func (self *_ThriftWriter) str(id int16, v string) {
    if v != "" {
        self.field(id, thrift.STRING, func() error { return self.p.WriteString(v) })
    }
}

func (self *_ThriftWriter) strs(id int16, v []string) {
    if len(v) != 0 {
        self.list(id, thrift.STRING, len(v), func(i int) { self.err = self.p.WriteString(v[i]) })
    }
}

func (self *_ThriftWriter) list(id int16, et thrift.TType, n int, fn func(i int)) {
    self.field(id, thrift.LIST, func() error {
        if err := self.p.WriteListBegin(et, n); err != nil {
            return err
        }
        for i := 0; i < n && self.err == nil; i++ {
            fn(i)
        }
        if self.err != nil {
            return self.err
        }
        return self.p.WriteListEnd()
    })
}

func (self *_ThriftWriter) literal(v *ir.Literal) {
    self.field(9, thrift.STRUCT, func() error {
        self.begin("Literal")
        self.field(1, thrift.BYTE, func() error { return self.p.WriteByte(int8(v.Kind)) })
        self.field(2, thrift.I64, func() error { return self.p.WriteI64(v.Int) })
        self.field(3, thrift.BOOL, func() error { return self.p.WriteBool(v.Bool) })
        self.field(4, thrift.DOUBLE, func() error { return self.p.WriteDouble(v.Float) })
        self.field(5, thrift.I32, func() error { return self.p.WriteI32(v.Char) })
        self.end()
        return self.err
    })
}

func (self *_ThriftWriter) instr(ins ir.Instr) {
    self.begin("Instr")

    /* dump every variant */
    switch v := ins.(type) {
        case *ir.Label: {
            self.field(1, thrift.BYTE, func() error { return self.p.WriteByte(_K_label) })
            self.str(8, v.Name)
        }

        /* terminators */
        case *ir.Terminator: {
            self.field(1, thrift.BYTE, func() error { return self.p.WriteByte(_K_term) })
            self.str(2, v.Op)
            self.strs(5, v.Args)
            self.strs(7, v.Labels)
        }

        /* value operations */
        case *ir.ValueOp: {
            self.field(1, thrift.BYTE, func() error { return self.p.WriteByte(_K_value) })
            self.str(2, v.Op)
            self.str(3, v.Dest)
            self.str(4, string(v.Type))
            self.strs(5, v.Args)
            self.strs(6, v.Funcs)
            self.strs(7, v.Labels)

            /* constants */
            if v.Value != nil {
                self.literal(v.Value)
            }
        }

        /* effect operations */
        case *ir.EffectOp: {
            self.field(1, thrift.BYTE, func() error { return self.p.WriteByte(_K_effect) })
            self.str(2, v.Op)
            self.strs(5, v.Args)
            self.strs(6, v.Funcs)
            self.strs(7, v.Labels)
        }
    }

    /* end of instruction */
    self.end()
}

func (self *_ThriftWriter) function(fn *ir.Function) {
    self.begin("Function")
    self.str(1, fn.Name)

    /* function parameters */
    if len(fn.Args) != 0 {
        self.list(2, thrift.STRUCT, len(fn.Args), func(i int) {
            self.begin("Arg")
            self.str(1, fn.Args[i].Name)
            self.str(2, string(fn.Args[i].Type))
            self.end()
        })
    }

    /* return type and body */
    self.str(3, string(fn.Type))
    self.list(4, thrift.STRUCT, len(fn.Instrs), func(i int) { self.instr(fn.Instrs[i]) })
    self.end()
}

// EncodeThrift serializes the program with the Thrift Binary Protocol.
func EncodeThrift(p *ir.Program) ([]byte, error) {
    buf := thrift.NewTMemoryBuffer()
    enc := &_ThriftWriter { p: thrift.NewTBinaryProtocolTransport(buf) }

    /* dump the program */
    enc.begin("Program")
    enc.list(1, thrift.STRUCT, len(p.Functions), func(i int) { enc.function(p.Functions[i]) })
    enc.end()

    /* flush the protocol */
    if enc.err == nil {
        enc.err = enc.p.Flush(context.Background())
    }

    /* check for errors */
    if enc.err != nil {
        return nil, errors.Wrap(enc.err, "cannot encode program")
    } else {
        return buf.Bytes(), nil
    }
}
