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
    `github.com/apache/thrift/lib/go/thrift`
    `github.com/pkg/errors`

    `github.com/cloudwego/midend/internal/ir`
    `github.com/cloudwego/midend/internal/utils`
)

type _ThriftReader struct {
    p thrift.TProtocol
}

func (self _ThriftReader) object(fn func(id int16, tt thrift.TType) error) error {
    if _, err := self.p.ReadStructBegin(); err != nil {
        return err
    }

    /* read every field until STOP */
    for {
        _, tt, id, err := self.p.ReadFieldBegin()
        if err != nil {
            return err
        }

        /* end of struct */
        if tt == thrift.STOP {
            break
        }

        /* read the field value */
        if err = fn(id, tt); err != nil {
            return err
        }

        /* end of field */
        if err = self.p.ReadFieldEnd(); err != nil {
            return err
        }
    }

    /* end of struct */
    return self.p.ReadStructEnd()
}

func (self _ThriftReader) list(fn func(i int) error) error {
    _, n, err := self.p.ReadListBegin()
    if err != nil {
        return err
    }

    /* read every element */
    for i := 0; i < n; i++ {
        if err = fn(i); err != nil {
            return err
        }
    }

    /* end of list */
    return self.p.ReadListEnd()
}

func (self _ThriftReader) strs(v *[]string) error {
    return self.list(func(int) error {
        s, err := self.p.ReadString()
        *v = append(*v, s)
        return err
    })
}

func (self _ThriftReader) literal() (lit ir.Literal, err error) {
    err = self.object(func(id int16, tt thrift.TType) (err error) {
        var b int8
        var c int32

        /* read the literal fields */
        switch {
            case id == 1 && tt == thrift.BYTE   : b, err = self.p.ReadByte(); lit.Kind = ir.LiteralKind(b)
            case id == 2 && tt == thrift.I64    : lit.Int, err = self.p.ReadI64()
            case id == 3 && tt == thrift.BOOL   : lit.Bool, err = self.p.ReadBool()
            case id == 4 && tt == thrift.DOUBLE : lit.Float, err = self.p.ReadDouble()
            case id == 5 && tt == thrift.I32    : c, err = self.p.ReadI32(); lit.Char = c
            default                             : err = self.p.Skip(tt)
        }

        return
    })
    return
}

func (self _ThriftReader) instr(fn string, idx int) (ir.Instr, error) {
    var kind int8 = -1
    var lit *ir.Literal
    var op, dest, typ, label string
    var args, funcs, labels []string

    /* read all the fields */
    err := self.object(func(id int16, tt thrift.TType) (err error) {
        switch {
            case id == 1 && tt == thrift.BYTE   : kind, err = self.p.ReadByte()
            case id == 2 && tt == thrift.STRING : op, err = self.p.ReadString()
            case id == 3 && tt == thrift.STRING : dest, err = self.p.ReadString()
            case id == 4 && tt == thrift.STRING : typ, err = self.p.ReadString()
            case id == 5 && tt == thrift.LIST   : err = self.strs(&args)
            case id == 6 && tt == thrift.LIST   : err = self.strs(&funcs)
            case id == 7 && tt == thrift.LIST   : err = self.strs(&labels)
            case id == 8 && tt == thrift.STRING : label, err = self.p.ReadString()
            case id == 9 && tt == thrift.STRUCT : {
                var v ir.Literal
                v, err = self.literal()
                lit = &v
            }
            default: {
                err = self.p.Skip(tt)
            }
        }
        return
    })

    /* check for errors */
    if err != nil {
        return nil, err
    }

    /* construct the instruction */
    var ins ir.Instr
    switch kind {
        case _K_label  : ins = &ir.Label { Name: label }
        case _K_term   : ins = &ir.Terminator { Op: op, Args: args, Labels: labels }
        case _K_effect : ins = &ir.EffectOp { Op: op, Args: args, Funcs: funcs, Labels: labels }
        case _K_value  : ins = &ir.ValueOp { Dest: dest, Type: ir.Type(typ), Op: op, Args: args, Funcs: funcs, Labels: labels, Value: lit }
        default        : return nil, utils.EMalformed(fn, idx, "instruction has neither an operation nor a label")
    }

    /* validate the instruction */
    if err = ir.Check(fn, idx, ins); err != nil {
        return nil, err
    } else {
        return ins, nil
    }
}

func (self _ThriftReader) function() (*ir.Function, error) {
    fn := new(ir.Function)
    err := self.object(func(id int16, tt thrift.TType) (err error) {
        var s string
        switch {
            case id == 1 && tt == thrift.STRING: {
                fn.Name, err = self.p.ReadString()
            }

            /* function parameters */
            case id == 2 && tt == thrift.LIST: {
                err = self.list(func(int) error {
                    var a ir.Arg
                    fn.Args = append(fn.Args, a)
                    arg := &fn.Args[len(fn.Args) - 1]

                    /* read the parameter */
                    return self.object(func(id int16, tt thrift.TType) (err error) {
                        switch {
                            case id == 1 && tt == thrift.STRING : arg.Name, err = self.p.ReadString()
                            case id == 2 && tt == thrift.STRING : s, err = self.p.ReadString(); arg.Type = ir.Type(s)
                            default                             : err = self.p.Skip(tt)
                        }
                        return
                    })
                })
            }

            /* return type */
            case id == 3 && tt == thrift.STRING: {
                s, err = self.p.ReadString()
                fn.Type = ir.Type(s)
            }

            /* function body */
            case id == 4 && tt == thrift.LIST: {
                fn.Instrs = []ir.Instr{}
                err = self.list(func(i int) error {
                    ins, err := self.instr(fn.Name, i)
                    fn.Instrs = append(fn.Instrs, ins)
                    return err
                })
            }

            default: {
                err = self.p.Skip(tt)
            }
        }
        return
    })
    return fn, err
}

// DecodeThrift parses a program serialized by EncodeThrift.
func DecodeThrift(buf []byte) (*ir.Program, error) {
    mem := thrift.NewTMemoryBufferLen(len(buf))
    ret := new(ir.Program)

    /* load the buffer */
    if _, err := mem.Write(buf); err != nil {
        return nil, errors.Wrap(err, "cannot load program")
    }

    /* parse the program */
    rd := _ThriftReader { p: thrift.NewTBinaryProtocolTransport(mem) }
    err := rd.object(func(id int16, tt thrift.TType) error {
        if id != 1 || tt != thrift.LIST {
            return rd.p.Skip(tt)
        }

        /* read every function */
        return rd.list(func(int) error {
            fn, err := rd.function()
            ret.Functions = append(ret.Functions, fn)
            return err
        })
    })

    /* malformed instructions are reported as is */
    if _, ok := errors.Cause(err).(utils.MalformedInstructionError); ok {
        return nil, err
    } else if err != nil {
        return nil, errors.Wrap(err, "cannot decode program")
    } else {
        return ret, nil
    }
}
