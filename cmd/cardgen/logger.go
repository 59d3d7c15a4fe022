// Copyright The Cardgen Authors.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"
)

// stderrLogger implements log.Logger for --verbose runs.
type stderrLogger struct{}

func (stderrLogger) print(level string, args []interface{}) {
	fmt.Fprintf(os.Stderr, "[%s] %s\n", level, fmt.Sprint(args...))
}

func (stderrLogger) printf(level, format string, args []interface{}) {
	fmt.Fprintf(os.Stderr, "[%s] %s\n", level, fmt.Sprintf(format, args...))
}

func (l stderrLogger) Debug(args ...interface{}) {
	l.print("debug", args)
}

func (l stderrLogger) Debugf(format string, args ...interface{}) {
	l.printf("debug", format, args)
}

func (l stderrLogger) Info(args ...interface{}) {
	l.print("info", args)
}

func (l stderrLogger) Infof(format string, args ...interface{}) {
	l.printf("info", format, args)
}

func (l stderrLogger) Warn(args ...interface{}) {
	l.print("warn", args)
}

func (l stderrLogger) Warnf(format string, args ...interface{}) {
	l.printf("warn", format, args)
}

func (l stderrLogger) Error(args ...interface{}) {
	l.print("error", args)
}

func (l stderrLogger) Errorf(format string, args ...interface{}) {
	l.printf("error", format, args)
}
