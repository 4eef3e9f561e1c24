/*
 * Copyright 2022 CloudWeGo Authors
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

package debug

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudwego/midend/internal/ir"
	"github.com/cloudwego/midend/internal/opt"
)

func TestStats_Counters(t *testing.T) {
	ResetStats()
	require.Equal(t, Stats{}, GetStats())

	/* one redundant addition and one dead constant */
	fn := ir.CreateBuilder("main", ir.Arg{Name: "a", Type: "int"}).
		Add("x", "a", "a").
		Add("y", "a", "a").
		Const("z", "int", ir.Int(1)).
		Print("x", "y").
		Build()
	_, err := opt.Optimize(fn, 16)
	require.NoError(t, err)

	st := GetStats()
	require.Equal(t, 1, st.LVN.Eliminated)
	require.Equal(t, 1, st.DCE.Removed)
	require.Equal(t, 2, st.Iterations)

	ResetStats()
	require.Equal(t, Stats{}, GetStats())
}
