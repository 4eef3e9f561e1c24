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
    `context`
    `io`
    `sync`

    `github.com/bytedance/gopkg/util/gopool`
    `github.com/sirupsen/logrus`

    `github.com/cloudwego/midend/internal/ir`
    `github.com/cloudwego/midend/internal/irio`
    `github.com/cloudwego/midend/internal/opt`
    `github.com/cloudwego/midend/internal/opts`
    `github.com/cloudwego/midend/internal/utils`
)

type (
    Program   = ir.Program
    Function  = ir.Function
    Dominance = opt.Dominance
    Liveness  = opt.Liveness
)

type _FuncIndex struct{}

func funcname(fn *Function) string {
    if fn == nil {
        return "<nil>"
    } else {
        return fn.Name
    }
}

// forEach runs the pass on every function of the program. Functions are
// independent, so they are processed concurrently when allowed. The results
// are in the function order, and so is the error precedence.
func forEach[T any](o opts.Options, pass string, p *Program, do func(fn *Function) (T, error)) ([]T, error) {
    nfn := len(p.Functions)
    ret := make([]T, nfn)
    errs := make([]error, nfn)

    /* wrap the pass with logging */
    run := func(i int) {
        fn := p.Functions[i]
        ret[i], errs[i] = do(fn)

        /* log the result */
        if errs[i] != nil {
            logrus.WithFields(logrus.Fields{"func": fn.Name, "pass": pass}).WithError(errs[i]).Debug("pass failed")
        } else {
            logrus.WithFields(logrus.Fields{"func": fn.Name, "pass": pass}).Debug("pass done")
        }
    }

    /* panics in the caller goroutine are internal errors as well */
    catch := func(i int) {
        defer func() {
            if v := recover(); v != nil {
                errs[i] = utils.EPanic(pass, funcname(p.Functions[i]), v)
            }
        }()
        run(i)
    }

    /* small programs are not worth the goroutines */
    if o.Sequential(nfn) {
        for i := range p.Functions {
            catch(i)
            if errs[i] != nil {
                return nil, errs[i]
            }
        }
        return ret, nil
    }

    /* create a pool for this run */
    wg := new(sync.WaitGroup)
    pool := gopool.NewPool("midend." + pass, int32(o.Parallelism), gopool.NewConfig())

    /* a panicking pass is an internal error of that function */
    pool.SetPanicHandler(func(ctx context.Context, v interface{}) {
        i := ctx.Value(_FuncIndex{}).(int)
        errs[i] = utils.EPanic(pass, funcname(p.Functions[i]), v)
        wg.Done()
    })

    /* submit all the functions */
    for i := range p.Functions {
        wg.Add(1)
        idx := i
        pool.CtxGo(context.WithValue(context.Background(), _FuncIndex{}, idx), func() {
            run(idx)
            wg.Done()
        })
    }

    /* wait for all of them, the first failed function wins */
    wg.Wait()
    for _, err := range errs {
        if err != nil {
            return nil, err
        }
    }

    return ret, nil
}

func transform(o opts.Options, pass string, p *Program, do func(fn *Function) (*Function, error)) (*Program, error) {
    if ret, err := forEach(o, pass, p, do); err != nil {
        return nil, err
    } else {
        return &Program { Functions: ret }, nil
    }
}

// Optimize repeats dead code elimination followed by local value numbering
// on every function until the program stops changing.
func Optimize(p *Program, options ...Option) (*Program, error) {
    o := buildOptions(options)
    return transform(o, "optimize", p, func(fn *Function) (*Function, error) {
        return opt.Optimize(fn, o.MaxIterations)
    })
}

// ValueNumbering runs a single round of local value numbering.
func ValueNumbering(p *Program, options ...Option) (*Program, error) {
    return transform(buildOptions(options), "lvn", p, opt.LVN{}.Apply)
}

// EliminateDeadCode runs dead code elimination once, the removal of unused
// definitions itself iterates until nothing is left to remove.
func EliminateDeadCode(p *Program, options ...Option) (*Program, error) {
    return transform(buildOptions(options), "dce", p, opt.DCE{}.Apply)
}

// ToSSA converts every function into SSA form.
func ToSSA(p *Program, options ...Option) (*Program, error) {
    return transform(buildOptions(options), "ssa", p, opt.ConvertSSA)
}

// Dominators computes the dominance information of every function, the CFG
// includes fallthrough edges.
func Dominators(p *Program, options ...Option) ([]*Dominance, error) {
    return forEach(buildOptions(options), "dom", p, func(fn *Function) (*Dominance, error) {
        if bbs, err := opt.Blockify(fn.Name, fn.Instrs); err != nil {
            return nil, err
        } else {
            return opt.Dominators(opt.BuildCFG(bbs, opt.ImplicitFallthrough))
        }
    })
}

// LiveVariables computes the live variables of every block of every function.
func LiveVariables(p *Program, options ...Option) ([]*Liveness, error) {
    return forEach(buildOptions(options), "live", p, opt.AnalyzeLiveness)
}

// DecodeJSON reads a program in the Bril JSON format.
func DecodeJSON(r io.Reader) (*Program, error) {
    return irio.DecodeJSON(r)
}

// EncodeJSON writes the program in the Bril JSON format.
func EncodeJSON(w io.Writer, p *Program) error {
    return irio.EncodeJSON(w, p)
}

// EncodeThrift serializes the program with the Thrift binary protocol.
func EncodeThrift(p *Program) ([]byte, error) {
    return irio.EncodeThrift(p)
}

// DecodeThrift parses a program serialized by EncodeThrift.
func DecodeThrift(buf []byte) (*Program, error) {
    return irio.DecodeThrift(buf)
}
