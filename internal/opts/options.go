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

package opts

import (
	"go.uber.org/zap"
)

type Options struct {
	MaxRounds int
	Verify    bool
	Logger    *zap.Logger
}

// CanIterate reports whether the optimization loop may run another round.
func (self *Options) CanIterate(round int) bool {
	return self.MaxRounds > round || self.MaxRounds == 0
}

// Log returns the logger, never nil.
func (self *Options) Log() *zap.Logger {
	if self.Logger == nil {
		return zap.NewNop()
	} else {
		return self.Logger
	}
}

func GetDefaultOptions() Options {
	return Options{
		MaxRounds: MaxRounds,
		Verify:    Verify,
		Logger:    zap.NewNop(),
	}
}
