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
    `github.com/cloudwego/midend/internal/utils`
)

// Check verifies that ins is exactly one well-formed instruction variant.
func Check(fn string, idx int, ins Instr) error {
    switch v := ins.(type) {
        case nil: {
            return utils.EMalformed(fn, idx, "instruction has neither an operation nor a label")
        }

        /* labels must be named */
        case *Label: {
            if v == nil || v.Name == "" {
                return utils.EMalformed(fn, idx, "label without a name")
            }
        }

        /* terminators are only jmp, br and ret */
        case *Terminator: {
            if v == nil || !IsTerminatorOp(v.Op) {
                return utils.EMalformed(fn, idx, "invalid terminator")
            }
        }

        /* value operations must define something */
        case *ValueOp: {
            if v == nil || v.Op == "" {
                return utils.EMalformed(fn, idx, "instruction has neither an operation nor a label")
            } else if v.Dest == "" {
                return utils.EMalformed(fn, idx, "value operation without a destination")
            } else if IsTerminatorOp(v.Op) {
                return utils.EMalformed(fn, idx, "terminator " + v.Op + " can not define a value")
            } else if v.Op == OpConst && v.Value == nil {
                return utils.EMalformed(fn, idx, "constant without a value")
            }
        }

        /* effect operations */
        case *EffectOp: {
            if v == nil || v.Op == "" {
                return utils.EMalformed(fn, idx, "instruction has neither an operation nor a label")
            } else if IsTerminatorOp(v.Op) {
                return utils.EMalformed(fn, idx, "terminator " + v.Op + " is not an effect operation")
            }
        }
    }
    return nil
}

// Validate checks every instruction of the function.
func (self *Function) Validate() error {
    for i, ins := range self.Instrs {
        if err := Check(self.Name, i, ins); err != nil {
            return err
        }
    }
    return nil
}
