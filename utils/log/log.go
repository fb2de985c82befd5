// Copyright (c) 2023-2026 Shoal Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log exposes a process-wide sugared zap logger, so components can
// log without threading a logger through every constructor. The logger is
// stored in zap's globals and replaced by ConfigureLogger at startup.
package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func init() {
	c := zap.NewProductionConfig()
	c.Encoding = "console"
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	c.DisableStacktrace = true
	ConfigureLogger(c)
}

// ConfigureLogger builds c and installs the result as the process logger,
// returning it for the caller to Sync on exit. Panics on invalid config.
func ConfigureLogger(c zap.Config) *zap.SugaredLogger {
	// The extra frame added by this package's wrappers is skipped so
	// caller annotations point at the real call site.
	logger, err := c.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
	return logger.Sugar()
}

// Default returns the process logger.
func Default() *zap.SugaredLogger {
	return zap.S()
}

// With adds fields to the logging context, accepting both zapcore.Field
// values and loosely typed key-value pairs.
func With(args ...interface{}) *zap.SugaredLogger {
	return Default().With(args...)
}

// Sprint-style logging at each level. Fatal exits the process.

func Debug(args ...interface{}) { Default().Debug(args...) }
func Info(args ...interface{})  { Default().Info(args...) }
func Warn(args ...interface{})  { Default().Warn(args...) }
func Error(args ...interface{}) { Default().Error(args...) }
func Fatal(args ...interface{}) { Default().Fatal(args...) }

// Sprintf-style logging at each level. Fatalf exits the process.

func Debugf(format string, args ...interface{}) { Default().Debugf(format, args...) }
func Infof(format string, args ...interface{})  { Default().Infof(format, args...) }
func Warnf(format string, args ...interface{})  { Default().Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { Default().Errorf(format, args...) }
func Fatalf(format string, args ...interface{}) { Default().Fatalf(format, args...) }
