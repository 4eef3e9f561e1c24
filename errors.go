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
    `github.com/cloudwego/midend/internal/utils`
)

type (
    // MalformedInstructionError occures when an instruction is neither an
    // operation nor a label. It stops the whole run.
    MalformedInstructionError = utils.MalformedInstructionError

    // InternalError occures when a pass breaks its own invariants, the
    // result of such a run must never be used.
    InternalError = utils.InternalError

    ErrorKind = utils.ErrorKind
)

const (
    MissingSuccessorState   = utils.MissingSuccessorState
    DuplicateCanonicalEntry = utils.DuplicateCanonicalEntry
    NonConvergence          = utils.NonConvergence
    WorkerPanic             = utils.WorkerPanic
)

// Sentinels for errors.Is, ErrInternal matches every kind of InternalError.
var (
    ErrMalformed               error = MalformedInstructionError{}
    ErrInternal                error = InternalError{}
    ErrMissingSuccessorState   error = InternalError { Kind: MissingSuccessorState }
    ErrDuplicateCanonicalEntry error = InternalError { Kind: DuplicateCanonicalEntry }
    ErrNonConvergence          error = InternalError { Kind: NonConvergence }
    ErrWorkerPanic             error = InternalError { Kind: WorkerPanic }
)
