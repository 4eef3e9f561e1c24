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

package utils

import (
    `fmt`
)

type ErrorKind uint8

const (
    _ ErrorKind = iota
    MissingSuccessorState
    DuplicateCanonicalEntry
    NonConvergence
    WorkerPanic
)

func (self ErrorKind) String() string {
    switch self {
        case MissingSuccessorState   : return "MissingSuccessorState"
        case DuplicateCanonicalEntry : return "DuplicateCanonicalEntry"
        case NonConvergence          : return "NonConvergence"
        case WorkerPanic             : return "WorkerPanic"
        default                      : return fmt.Sprintf("ErrorKind(%d)", uint8(self))
    }
}

// MalformedInstructionError occures when an instruction record is neither an
// operation nor a label, or when it can not be placed into a basic block.
type MalformedInstructionError struct {
    Func   string
    Index  int
    Reason string
}

func (self MalformedInstructionError) Error() string {
    if self.Index < 0 {
        return fmt.Sprintf("MalformedInstruction(@%s): %s", self.Func, self.Reason)
    } else {
        return fmt.Sprintf("MalformedInstruction(@%s#%d): %s", self.Func, self.Index, self.Reason)
    }
}

func (self MalformedInstructionError) Is(target error) bool {
    _, ok := target.(MalformedInstructionError)
    return ok
}

// InternalError means one of the passes broke its own invariant. It is never
// recovered from, the output of the failing pass must be discarded.
type InternalError struct {
    Kind ErrorKind
    Pass string
    Func string
    Note string
}

func (self InternalError) Error() string {
    return fmt.Sprintf("InternalError(%s, pass %s, @%s): %s", self.Kind, self.Pass, self.Func, self.Note)
}

// Is matches any InternalError of the same kind, a zero kind matches all of them.
func (self InternalError) Is(target error) bool {
    if t, ok := target.(InternalError); !ok {
        return false
    } else {
        return t.Kind == 0 || t.Kind == self.Kind
    }
}

func EMalformed(fn string, idx int, reason string) MalformedInstructionError {
    return MalformedInstructionError {
        Func   : fn,
        Index  : idx,
        Reason : reason,
    }
}

func EDuplicateLabel(fn string, idx int, label string) MalformedInstructionError {
    return EMalformed(fn, idx, fmt.Sprintf("label %q is defined more than once", label))
}

func EMissingSuccessor(pass string, fn string, block string, succ string) InternalError {
    return InternalError {
        Kind : MissingSuccessorState,
        Pass : pass,
        Func : fn,
        Note : fmt.Sprintf("block %s is processed before the state of its successor %s exists", block, succ),
    }
}

func EDuplicateEntry(fn string, vid string, n int) InternalError {
    return InternalError {
        Kind : DuplicateCanonicalEntry,
        Pass : "lvn",
        Func : fn,
        Note : fmt.Sprintf("%d value table entries share the descriptor %s", n, vid),
    }
}

func ENonConvergence(pass string, fn string, limit int) InternalError {
    return InternalError {
        Kind : NonConvergence,
        Pass : pass,
        Func : fn,
        Note : fmt.Sprintf("no fixpoint after %d iterations", limit),
    }
}

func EPanic(pass string, fn string, v interface{}) InternalError {
    return InternalError {
        Kind : WorkerPanic,
        Pass : pass,
        Func : fn,
        Note : fmt.Sprintf("worker panicked: %v", v),
    }
}
