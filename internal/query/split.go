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

// Split separates an NNF expression into the cross-index prefilter
// (labels, fields, timestamps, security) and the in-paragraph filter
// (paragraph-local keyword/facet atoms), per §4.6 pass 2. Both halves
// keep the full boolean structure of the original expression; atoms
// belonging to the other half are replaced with "true" (a negated foreign
// atom as well), so each half only narrows the result on its own atoms
// and never excludes a record because of the other half's atoms.
func Split(e Expr) (prefilter, inPara Expr) {
	return project(e, true), project(e, false)
}

// project rewrites e keeping only atoms matching wantPrefilter,
// replacing every other atom, and the negation of one, with "true".
func project(e Expr, wantPrefilter bool) Expr {
	switch e.Kind {
	case KindAnd:
		var out []Expr
		for _, op := range e.Operands {
			out = append(out, project(op, wantPrefilter))
		}
		return simplifyAnd(out)
	case KindOr:
		var out []Expr
		for _, op := range e.Operands {
			out = append(out, project(op, wantPrefilter))
		}
		return simplifyOr(out)
	case KindNot:
		if op := e.Operands[0]; op.IsAtom() && op.IsPrefilterAtom() != wantPrefilter {
			return trueExpr()
		}
		inner := project(e.Operands[0], wantPrefilter)
		if isTrue(inner) {
			return falseExpr()
		}
		if isFalse(inner) {
			return trueExpr()
		}
		return Not(inner)
	default:
		if e.IsPrefilterAtom() == wantPrefilter {
			return e
		}
		return trueExpr()
	}
}

// trueExpr/falseExpr are represented as the empty And / empty Or,
// matching the original_source formula's convention that an empty
// conjunction is vacuously true (mod.rs Formula::run uses iter().all).
func trueExpr() Expr  { return Expr{Kind: KindAnd} }
func falseExpr() Expr { return Expr{Kind: KindOr} }

func isTrue(e Expr) bool  { return e.Kind == KindAnd && len(e.Operands) == 0 }
func isFalse(e Expr) bool { return e.Kind == KindOr && len(e.Operands) == 0 }

func simplifyAnd(operands []Expr) Expr {
	var out []Expr
	for _, op := range operands {
		if isTrue(op) {
			continue
		}
		if isFalse(op) {
			return falseExpr()
		}
		out = append(out, op)
	}
	return Expr{Kind: KindAnd, Operands: out}
}

func simplifyOr(operands []Expr) Expr {
	var out []Expr
	for _, op := range operands {
		if isFalse(op) {
			continue
		}
		if isTrue(op) {
			return trueExpr()
		}
		out = append(out, op)
	}
	return Expr{Kind: KindOr, Operands: out}
}
