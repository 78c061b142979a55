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

package query

import "github.com/samber/lo"

// ToNNF translates an Expr into negated normal form per §4.6 pass 1:
// Not(And) -> Or(Not...), Not(Or) -> And(Not...), double negation is
// eliminated, and nested And/And or Or/Or are flattened. Atoms (Not of
// an atom) are left as-is since there's no further pushdown possible.
func ToNNF(e Expr) Expr {
	switch e.Kind {
	case KindAnd:
		return flatten(KindAnd, mapNNF(e.Operands))
	case KindOr:
		return flatten(KindOr, mapNNF(e.Operands))
	case KindNot:
		inner := e.Operands[0]
		switch inner.Kind {
		case KindNot:
			// Double negation elimination.
			return ToNNF(inner.Operands[0])
		case KindAnd:
			negated := make([]Expr, len(inner.Operands))
			for i, op := range inner.Operands {
				negated[i] = ToNNF(Not(op))
			}
			return flatten(KindOr, negated)
		case KindOr:
			negated := make([]Expr, len(inner.Operands))
			for i, op := range inner.Operands {
				negated[i] = ToNNF(Not(op))
			}
			return flatten(KindAnd, negated)
		default:
			// Not of an atom: nothing further to push down.
			return Expr{Kind: KindNot, Operands: []Expr{ToNNF(inner)}}
		}
	default:
		return e
	}
}

func mapNNF(exprs []Expr) []Expr {
	return lo.Map(exprs, func(e Expr, _ int) Expr { return ToNNF(e) })
}

// flatten merges nested operands of the same boolean kind into one
// compound node, e.g. And(And(a,b),c) -> And(a,b,c).
func flatten(kind Kind, operands []Expr) Expr {
	var out []Expr
	for _, op := range operands {
		if op.Kind == kind {
			out = append(out, op.Operands...)
		} else {
			out = append(out, op)
		}
	}
	return Expr{Kind: kind, Operands: out}
}
