// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log provides a thin, context-scoped wrapper around zap so every
// role logs with the same structured conventions.
package log

import (
	"context"

	"go.uber.org/zap"
)

var base *zap.Logger

func init() {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	base = l
}

// Replace swaps the process-wide base logger, used by cmd/nidxctl to wire
// level/format from config.
func Replace(l *zap.Logger) {
	base = l
}

type ctxKey struct{}

// With returns a context carrying a logger annotated with the given fields,
// so downstream Ctx(ctx) calls include them automatically.
func With(ctx context.Context, fields ...zap.Field) context.Context {
	l := fromContext(ctx).With(fields...)
	return context.WithValue(ctx, ctxKey{}, l)
}

func fromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return base
	}
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return base
}

// Ctx returns the logger scoped to ctx, falling back to the base logger.
func Ctx(ctx context.Context) *zap.Logger {
	return fromContext(ctx)
}

func Info(msg string, fields ...zap.Field)  { base.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { base.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { base.Error(msg, fields...) }
func Debug(msg string, fields ...zap.Field) { base.Debug(msg, fields...) }
