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
    `strconv`
    `strings`
)

// SyntaxError occurs when a textual IR dump is malformed.
type SyntaxError struct {
    Line   int
    Reason string
}

func (self *SyntaxError) Error() string {
    return fmt.Sprintf("ir: syntax error at line %d: %s", self.Line, self.Reason)
}

func tokenize(line string) ([]string, error) {
    var ret []string
    var src = line

    /* scan every token */
    for {
        src = strings.TrimLeft(src, " \t")
        if src == "" {
            return ret, nil
        }

        /* punctuations */
        switch src[0] {
            case ',', '(', ')', '=': {
                ret = append(ret, src[:1])
                src = src[1:]
                continue
            }
        }

        /* string literals */
        if src[0] == '"' {
            if s, err := strconv.QuotedPrefix(src); err != nil {
                return nil, fmt.Errorf("invalid string literal: %s", src)
            } else {
                ret = append(ret, s)
                src = src[len(s):]
                continue
            }
        }

        /* identifiers, numbers and variables */
        n := strings.IndexAny(src, " \t,()=")
        if n < 0 {
            n = len(src)
        }

        /* add the token */
        ret = append(ret, src[:n])
        src = src[n:]
    }
}

type _Parser struct {
    ln     int
    tk     []string
    fn     *Function
    bb     *Block
    arena  *Arena
    vars   map[string]*Variable
    labels map[string]*Label
    seen   map[*Label]bool
}

func (self *_Parser) errorf(format string, args ...interface{}) error {
    return &SyntaxError {
        Line   : self.ln,
        Reason : fmt.Sprintf(format, args...),
    }
}

func (self *_Parser) next() (string, error) {
    if len(self.tk) == 0 {
        return "", self.errorf("unexpected end of line")
    } else {
        tk := self.tk[0]
        self.tk = self.tk[1:]
        return tk, nil
    }
}

func (self *_Parser) peek() string {
    if len(self.tk) == 0 {
        return ""
    } else {
        return self.tk[0]
    }
}

func (self *_Parser) expect(tok string) error {
    if tk, err := self.next(); err != nil {
        return err
    } else if tk != tok {
        return self.errorf("expected %q, got %q", tok, tk)
    } else {
        return nil
    }
}

func (self *_Parser) done() error {
    if len(self.tk) != 0 {
        return self.errorf("unexpected token %q", self.tk[0])
    } else {
        return nil
    }
}

func splitOrdinal(tk string) (string, bool) {
    if i := strings.LastIndexByte(tk, '.'); i <= 0 {
        return "", false
    } else if _, err := strconv.Atoi(tk[i + 1:]); err != nil {
        return "", false
    } else {
        return tk[:i], true
    }
}

func (self *_Parser) variable(tk string, vt Type) (*Variable, error) {
    if !strings.HasPrefix(tk, "%") {
        return nil, self.errorf("expected a variable, got %q", tk)
    }

    /* already seen */
    if v, ok := self.vars[tk]; ok {
        return v, nil
    }

    /* strip the ordinal */
    name, ok := splitOrdinal(tk[1:])
    if !ok {
        return nil, self.errorf("invalid variable name %q", tk)
    }

    /* allocate a new variable */
    v := self.arena.NewVariable(name, vt)
    self.vars[tk] = v
    return v, nil
}

func (self *_Parser) label(tk string) (*Label, error) {
    if p, ok := self.labels[tk]; ok {
        return p, nil
    } else if name, ok := splitOrdinal(tk); !ok {
        return nil, self.errorf("invalid label %q", tk)
    } else {
        p = self.arena.NewLabel(name)
        self.labels[tk] = p
        return p, nil
    }
}

func (self *_Parser) nextlabel() (*Label, error) {
    if tk, err := self.next(); err != nil {
        return nil, err
    } else {
        return self.label(tk)
    }
}

func (self *_Parser) operand() (Operand, error) {
    tk, err := self.next()
    if err != nil {
        return nil, err
    }

    /* check for operand kind */
    switch {
        case strings.HasPrefix(tk, "%"): {
            return self.variable(tk, "")
        }
        case strings.HasPrefix(tk, `"`): {
            if s, err := strconv.Unquote(tk); err != nil {
                return nil, self.errorf("invalid string literal %s", tk)
            } else {
                return StrConst(s), nil
            }
        }
        default: {
            if v, err := strconv.ParseInt(tk, 10, 64); err != nil {
                return nil, self.errorf("invalid operand %q", tk)
            } else {
                return IntConst(v), nil
            }
        }
    }
}

func (self *_Parser) mem() (Mem, error) {
    var err error
    var tk  string
    var val Operand
    var idx Operand

    /* base operand */
    if val, err = self.operand(); err != nil {
        return nil, err
    }

    /* field or element */
    if tk, err = self.next(); err != nil {
        return nil, err
    }

    /* check for access kind */
    switch tk {
        case "elem": {
            if idx, err = self.operand(); err != nil {
                return nil, err
            } else {
                return Elem { Arr: val, Index: idx }, nil
            }
        }
        case "field": {
            if tk, err = self.next(); err != nil {
                return nil, err
            } else {
                return Field { Obj: val, Name: tk }, nil
            }
        }
        default: {
            return nil, self.errorf("invalid memory access %q", tk)
        }
    }
}

func (self *_Parser) decls(close string) ([]*Variable, error) {
    var ret []*Variable
    var tk  string
    var err error

    /* empty declaration list */
    if self.peek() == close {
        return nil, nil
    }

    /* parse every declaration */
    for {
        var vn string
        var vt string

        /* name and type */
        if vn, err = self.next(); err != nil {
            return nil, err
        } else if vt, err = self.next(); err != nil {
            return nil, err
        }

        /* allocate the variable */
        if v, err := self.variable(vn, Type(vt)); err != nil {
            return nil, err
        } else {
            ret = append(ret, v)
        }

        /* check for more declarations */
        if tk = self.peek(); tk != "," {
            return ret, nil
        } else {
            self.tk = self.tk[1:]
        }
    }
}

func (self *_Parser) header() error {
    var err error
    var tk  string

    /* "func" NAME "(" */
    if err = self.expect("func"); err != nil {
        return err
    } else if tk, err = self.next(); err != nil {
        return err
    } else if err = self.expect("("); err != nil {
        return err
    }

    /* create the function */
    self.fn = &Function {
        Name  : tk,
        Arena : self.arena,
    }

    /* parameter list */
    if self.fn.Params, err = self.decls(")"); err != nil {
        return err
    } else if err = self.expect(")"); err != nil {
        return err
    }

    /* return type */
    if tk, err = self.next(); err != nil {
        return err
    } else if err = self.expect("{"); err != nil {
        return err
    }

    /* no more tokens */
    self.fn.Return = Type(tk)
    return self.done()
}

func (self *_Parser) attr(key string) error {
    var err error
    var tk  string

    /* check for attribute key */
    switch key {
        default: {
            return self.errorf("unknown attribute %q", key)
        }

        /* local declarations */
        case "locals": {
            if self.fn.Locals, err = self.decls(""); err != nil {
                return err
            }
        }

        /* result variable */
        case "result": {
            if tk, err = self.next(); err != nil {
                return err
            } else if tk != "none" {
                if self.fn.Result, err = self.variable(tk, self.fn.Return); err != nil {
                    return err
                }
            }
        }

        /* entry label */
        case "entry": {
            if self.fn.Entry, err = self.nextlabel(); err != nil {
                return err
            }
        }

        /* exit label */
        case "exit": {
            if self.fn.Exit, err = self.nextlabel(); err != nil {
                return err
            }
        }
    }

    /* no more tokens */
    return self.done()
}

func (self *_Parser) call(dst *Variable) (*Call, error) {
    var err error
    var val Operand
    var ret = &Call { Dst: dst }

    /* callee name */
    if ret.Callee, err = self.next(); err != nil {
        return nil, err
    } else if err = self.expect("("); err != nil {
        return nil, err
    }

    /* argument list */
    for self.peek() != ")" {
        if val, err = self.operand(); err != nil {
            return nil, err
        }

        /* add the argument */
        ret.Args = append(ret.Args, val)

        /* skip the comma */
        if self.peek() == "," {
            self.tk = self.tk[1:]
        }
    }

    /* skip the ")" */
    if err = self.expect(")"); err != nil {
        return nil, err
    } else if err = self.expect("next"); err != nil {
        return nil, err
    } else if ret.Next, err = self.nextlabel(); err != nil {
        return nil, err
    }

    /* optional exception handler */
    if self.peek() == "catch" {
        self.tk = self.tk[1:]
        if ret.Catch, err = self.nextlabel(); err != nil {
            return nil, err
        }
    }

    /* no more tokens */
    return ret, self.done()
}

func (self *_Parser) phi(dst *Variable) (*Phi, error) {
    ret := &Phi { Dst: dst }

    /* parse every argument */
    for {
        val, err := self.operand()
        if err != nil {
            return nil, err
        }

        /* "(" LABEL ")" */
        if err = self.expect("("); err != nil {
            return nil, err
        }

        /* predecessor label */
        pred, err := self.nextlabel()
        if err != nil {
            return nil, err
        } else if err = self.expect(")"); err != nil {
            return nil, err
        }

        /* add the argument */
        ret.Args = append(ret.Args, PhiArg {
            Value : val,
            Pred  : pred,
        })

        /* check for more arguments */
        if self.peek() != "," {
            return ret, self.done()
        } else {
            self.tk = self.tk[1:]
        }
    }
}

func (self *_Parser) assign(dst *Variable) (Stmt, Transfer, error) {
    var err error
    var tk  string
    var x   Operand
    var y   Operand

    /* plain moves start with an operand */
    switch tk = self.peek(); {
        case tk == "": {
            return nil, nil, self.errorf("missing right-hand side")
        }
        case tk[0] == '%' || tk[0] == '"' || tk[0] == '-' || (tk[0] >= '0' && tk[0] <= '9'): {
            if x, err = self.operand(); err != nil {
                return nil, nil, err
            } else {
                return &Move { Dst: dst, Src: x }, nil, self.done()
            }
        }
    }

    /* skip the operator */
    self.tk = self.tk[1:]

    /* check for the operator */
    switch tk {
        case "call": {
            p, err := self.call(dst)
            return nil, p, err
        }
        case "phi": {
            p, err := self.phi(dst)
            return p, nil, err
        }
        case "load": {
            if m, err := self.mem(); err != nil {
                return nil, nil, err
            } else {
                return &Load { Dst: dst, Mem: m }, nil, self.done()
            }
        }
        case "new": {
            if tk, err = self.next(); err != nil {
                return nil, nil, err
            } else {
                return &NewObject { Dst: dst, Class: tk }, nil, self.done()
            }
        }
        case "newarray": {
            if tk, err = self.next(); err != nil {
                return nil, nil, err
            } else if err = self.expect(","); err != nil {
                return nil, nil, err
            } else if x, err = self.operand(); err != nil {
                return nil, nil, err
            } else {
                return &NewArray { Dst: dst, Elem: Type(tk), Size: x }, nil, self.done()
            }
        }
    }

    /* unary operators */
    if op, ok := lookupUnary(tk); ok {
        if x, err = self.operand(); err != nil {
            return nil, nil, err
        } else {
            return &UnOp { Dst: dst, Op: op, X: x }, nil, self.done()
        }
    }

    /* binary operators */
    if op, ok := lookupBinary(tk); ok {
        if x, err = self.operand(); err != nil {
            return nil, nil, err
        } else if err = self.expect(","); err != nil {
            return nil, nil, err
        } else if y, err = self.operand(); err != nil {
            return nil, nil, err
        } else {
            return &BinOp { Dst: dst, Op: op, X: x, Y: y }, nil, self.done()
        }
    }

    /* not recognized */
    return nil, nil, self.errorf("unknown operator %q", tk)
}

func (self *_Parser) instr() (Stmt, Transfer, error) {
    var err error
    var tk  string
    var p   *Label
    var q   *Label
    var x   Operand

    /* assignments */
    if tk, err = self.next(); err != nil {
        return nil, nil, err
    } else if strings.HasPrefix(tk, "%") {
        if v, err := self.variable(tk, ""); err != nil {
            return nil, nil, err
        } else if err = self.expect("="); err != nil {
            return nil, nil, err
        } else {
            return self.assign(v)
        }
    }

    /* check for keywords */
    switch tk {
        default: {
            return nil, nil, self.errorf("unknown instruction %q", tk)
        }

        /* unconditional jumps */
        case "goto": {
            if p, err = self.nextlabel(); err != nil {
                return nil, nil, err
            } else {
                return nil, &Jump { To: p }, self.done()
            }
        }

        /* conditional branches */
        case "if": {
            if x, err = self.operand(); err != nil {
                return nil, nil, err
            } else if err = self.expect("then"); err != nil {
                return nil, nil, err
            } else if p, err = self.nextlabel(); err != nil {
                return nil, nil, err
            } else if err = self.expect("else"); err != nil {
                return nil, nil, err
            } else if q, err = self.nextlabel(); err != nil {
                return nil, nil, err
            } else {
                return nil, &If { Cond: x, Then: p, Else: q }, self.done()
            }
        }

        /* function returns */
        case "return": {
            if len(self.tk) == 0 {
                return nil, &Return{}, nil
            } else if x, err = self.operand(); err != nil {
                return nil, nil, err
            } else {
                return nil, &Return { Value: x }, self.done()
            }
        }

        /* exception raising */
        case "throw": {
            return nil, &Throw{}, self.done()
        }

        /* calls without results */
        case "call": {
            ret, err := self.call(nil)
            return nil, ret, err
        }

        /* memory stores */
        case "store": {
            if m, err := self.mem(); err != nil {
                return nil, nil, err
            } else if err = self.expect(","); err != nil {
                return nil, nil, err
            } else if x, err = self.operand(); err != nil {
                return nil, nil, err
            } else {
                return &Store { Mem: m, Src: x }, nil, self.done()
            }
        }

        /* exception scopes */
        case "try.enter", "try.exit": {
            if p, err = self.nextlabel(); err != nil {
                return nil, nil, err
            } else if tk == "try.enter" {
                return &TryEnter { Handler: p }, nil, self.done()
            } else {
                return &TryExit { Handler: p }, nil, self.done()
            }
        }
    }
}

func (self *_Parser) line(src string) (bool, error) {
    var err error
    var st  Stmt
    var tr  Transfer

    /* skip empty lines and comments */
    if s := strings.TrimSpace(src); s == "" || strings.HasPrefix(s, "#") {
        return false, nil
    }

    /* end of function */
    if strings.TrimSpace(src) == "}" {
        if self.bb != nil {
            return false, self.errorf("block %s is not terminated", self.bb.Label.Name())
        } else {
            return true, nil
        }
    }

    /* block labels start at the first column */
    if src[0] != ' ' && src[0] != '\t' {
        var p *Label
        var s = strings.TrimSpace(src)

        /* must end with colon */
        if !strings.HasSuffix(s, ":") {
            return false, self.errorf("invalid label line %q", s)
        } else if self.bb != nil {
            return false, self.errorf("block %s is not terminated", self.bb.Label.Name())
        } else if p, err = self.label(strings.TrimSuffix(s, ":")); err != nil {
            return false, err
        } else if self.seen[p] {
            return false, self.errorf("duplicated block %s", s)
        }

        /* start a new block */
        self.seen[p] = true
        self.bb = &Block { Label: p }
        return false, nil
    }

    /* tokenize the line */
    if self.tk, err = tokenize(src); err != nil {
        return false, self.errorf("%v", err)
    }

    /* function attributes */
    if self.bb == nil {
        switch key := self.tk[0]; key {
            case "locals", "result", "entry", "exit": {
                self.tk = self.tk[1:]
                return false, self.attr(key)
            }
        }
    }

    /* must be inside a block */
    if self.bb == nil {
        return false, self.errorf("instruction outside of a block")
    } else if st, tr, err = self.instr(); err != nil {
        return false, err
    }

    /* add to the current block */
    if tr == nil {
        self.bb.Stmts = append(self.bb.Stmts, st)
        return false, nil
    }

    /* the transfer closes the block */
    self.bb.Term = tr
    self.fn.Blocks = append(self.fn.Blocks, self.bb)
    self.bb = nil
    return false, nil
}

// Parse reads functions dumped by Print. All variables and labels are
// allocated in arena.
func Parse(arena *Arena, src string) ([]*Function, error) {
    var err error
    var end bool
    var ret []*Function
    var ps  *_Parser

    /* parse line by line */
    for i, ln := range strings.Split(src, "\n") {
        if ps == nil {
            if s := strings.TrimSpace(ln); s == "" || strings.HasPrefix(s, "#") {
                continue
            }

            /* start a new function */
            ps = &_Parser {
                ln     : i + 1,
                arena  : arena,
                vars   : make(map[string]*Variable),
                labels : make(map[string]*Label),
                seen   : make(map[*Label]bool),
            }

            /* parse the header */
            if ps.tk, err = tokenize(ln); err != nil {
                return nil, ps.errorf("%v", err)
            } else if err = ps.header(); err != nil {
                return nil, err
            } else {
                continue
            }
        }

        /* check for end of function */
        ps.ln, ps.tk = i + 1, nil
        if end, err = ps.line(ln); err != nil {
            return nil, err
        } else if end {
            ret = append(ret, ps.fn)
            ps = nil
        }
    }

    /* unterminated function */
    if ps != nil {
        return nil, ps.errorf("function %s is not terminated", ps.fn.Name)
    } else {
        return ret, nil
    }
}
