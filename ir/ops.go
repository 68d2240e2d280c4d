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

package ir

import (
    `fmt`

    `fortio.org/safecast`
)

type (
    UnaryOp  uint8
    BinaryOp uint8
)

const (
    OpNeg UnaryOp = iota
    OpNot
)

const (
    OpAdd BinaryOp = iota
    OpSub
    OpMul
    OpDiv
    OpMod
    OpAnd
    OpOr
    OpXor
    OpShl
    OpShr
    CmpEq
    CmpNe
    CmpLt
    CmpLe
    CmpGt
    CmpGe
)

var _UnaryNames = [...]string {
    OpNeg: "neg",
    OpNot: "not",
}

var _BinaryNames = [...]string {
    OpAdd : "add",
    OpSub : "sub",
    OpMul : "mul",
    OpDiv : "div",
    OpMod : "mod",
    OpAnd : "and",
    OpOr  : "or",
    OpXor : "xor",
    OpShl : "shl",
    OpShr : "shr",
    CmpEq : "eq",
    CmpNe : "ne",
    CmpLt : "lt",
    CmpLe : "le",
    CmpGt : "gt",
    CmpGe : "ge",
}

func (self UnaryOp) String() string {
    if int(self) < len(_UnaryNames) {
        return _UnaryNames[self]
    } else {
        panic(fmt.Sprintf("invalid unary operator: %d", self))
    }
}

func (self BinaryOp) String() string {
    if int(self) < len(_BinaryNames) {
        return _BinaryNames[self]
    } else {
        panic(fmt.Sprintf("invalid binary operator: %d", self))
    }
}

func lookupUnary(name string) (UnaryOp, bool) {
    for i, v := range _UnaryNames {
        if v == name {
            return UnaryOp(i), true
        }
    }
    return 0, false
}

func lookupBinary(name string) (BinaryOp, bool) {
    for i, v := range _BinaryNames {
        if v == name {
            return BinaryOp(i), true
        }
    }
    return 0, false
}

// IsConst reports whether the operand is a literal.
func IsConst(v Operand) bool {
    switch v.(type) {
        case IntConst : return true
        case StrConst : return true
        default       : return false
    }
}

func boolint(v bool) IntConst {
    if v {
        return 1
    } else {
        return 0
    }
}

// FoldUnary evaluates a unary operator over a literal. It returns false when
// the operation has no compile-time value.
func FoldUnary(op UnaryOp, v Operand) (Operand, bool) {
    x, ok := v.(IntConst)
    if !ok {
        return nil, false
    }

    /* integer operators */
    switch op {
        case OpNeg : return -x, true
        case OpNot : return boolint(x == 0), true
        default    : panic(fmt.Sprintf("fold: invalid unary operator: %d", op))
    }
}

// FoldBinary evaluates a binary operator over two literals. Division or
// modulo by zero, negative shift counts and mixed-kind operands are left to
// the runtime.
func FoldBinary(op BinaryOp, a Operand, b Operand) (Operand, bool) {
    switch x := a.(type) {
        case IntConst: {
            if y, ok := b.(IntConst); ok {
                return foldint(op, x, y)
            }
        }
        case StrConst: {
            if y, ok := b.(StrConst); ok {
                return foldstr(op, x, y)
            }
        }
    }
    return nil, false
}

func foldint(op BinaryOp, x IntConst, y IntConst) (Operand, bool) {
    switch op {
        case OpAdd : return x + y, true
        case OpSub : return x - y, true
        case OpMul : return x * y, true
        case OpAnd : return x & y, true
        case OpOr  : return x | y, true
        case OpXor : return x ^ y, true
        case CmpEq : return boolint(x == y), true
        case CmpNe : return boolint(x != y), true
        case CmpLt : return boolint(x <  y), true
        case CmpLe : return boolint(x <= y), true
        case CmpGt : return boolint(x >  y), true
        case CmpGe : return boolint(x >= y), true
    }

    /* division by zero has no value */
    if op == OpDiv || op == OpMod {
        if y == 0 {
            return nil, false
        } else if op == OpDiv {
            return x / y, true
        } else {
            return x % y, true
        }
    }

    /* shift count must be non-negative */
    s, err := safecast.Conv[uint](int64(y))
    if err != nil {
        return nil, false
    }

    /* shift operators */
    switch op {
        case OpShl : return x << s, true
        case OpShr : return x >> s, true
        default    : panic(fmt.Sprintf("fold: invalid binary operator: %d", op))
    }
}

func foldstr(op BinaryOp, x StrConst, y StrConst) (Operand, bool) {
    switch op {
        case OpAdd : return x + y, true
        case CmpEq : return boolint(x == y), true
        case CmpNe : return boolint(x != y), true
        default    : return nil, false
    }
}
