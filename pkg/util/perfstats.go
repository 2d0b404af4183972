// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package util

import (
	"fmt"
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
)

// PassTimer snapshots wall-clock time and heap allocation at the moment it
// is created, so a later Log/String call can report how much of each the
// pipeline spent since. pkg/pipeline uses one for the whole C1-C9 run and
// one for the per-function C4-C6 analysis loop.
type PassTimer struct {
	startTime time.Time
	startMem  uint64
	startGc   uint32
}

// NewPassTimer starts a timer at the current instant.
func NewPassTimer() *PassTimer {
	var m runtime.MemStats

	startTime := time.Now()

	runtime.ReadMemStats(&m)

	return &PassTimer{startTime, m.TotalAlloc, m.NumGC}
}

// Log reports the elapsed time/allocation under prefix at Debug level.
func (p *PassTimer) Log(prefix string) {
	log.Debugf("%s took %s", prefix, p.String())
}

// String renders the elapsed wall-clock time, bytes allocated, and GC count
// since the timer started.
func (p *PassTimer) String() string {
	var m runtime.MemStats

	runtime.ReadMemStats(&m)
	allocGb := (m.TotalAlloc - p.startMem) / 1024 / 1024 / 1024
	gcs := m.NumGC - p.startGc
	elapsed := time.Since(p.startTime).Seconds()

	return fmt.Sprintf("%0.2fs using %v Gb (%v GC events) [%v Gb]", elapsed, allocGb, gcs, m.Alloc/1024/1024/1024)
}
