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

    `github.com/bytedance/gopkg/util/xxhash3`
)

// _OrdinalNamer spells every identity as "name.k", where k numbers the
// identities of one function in order of first appearance. Parsing a dump and
// printing it again reproduces the same text.
type _OrdinalNamer struct {
    vars   map[*Variable]string
    labels map[*Label]string
}

func newOrdinalNamer() *_OrdinalNamer {
    return &_OrdinalNamer {
        vars   : make(map[*Variable]string),
        labels : make(map[*Label]string),
    }
}

func (self *_OrdinalNamer) Var(v *Variable) string {
    if s, ok := self.vars[v]; ok {
        return s
    } else {
        s = "%" + v.Name() + "." + strconv.Itoa(len(self.vars))
        self.vars[v] = s
        return s
    }
}

func (self *_OrdinalNamer) Label(p *Label) string {
    if s, ok := self.labels[p]; ok {
        return s
    } else {
        s = p.Name() + "." + strconv.Itoa(len(self.labels))
        self.labels[p] = s
        return s
    }
}

func fmtdecl(n Namer, vv []*Variable) string {
    ret := make([]string, 0, len(vv))
    for _, v := range vv { ret = append(ret, n.Var(v) + " " + string(v.Type())) }
    return strings.Join(ret, ", ")
}

// Print dumps the function in the textual IR format understood by Parse.
func Print(fn *Function) string {
    var sb strings.Builder
    var nm = newOrdinalNamer()

    /* function header */
    fmt.Fprintf(&sb, "func %s(%s) %s {\n", fn.Name, fmtdecl(nm, fn.Params), fn.Return)
    sb.WriteString(strings.TrimRight("    locals " + fmtdecl(nm, fn.Locals), " "))
    sb.WriteByte('\n')

    /* result variable */
    if fn.Result == nil {
        sb.WriteString("    result none\n")
    } else {
        sb.WriteString("    result " + nm.Var(fn.Result) + "\n")
    }

    /* entry and exit labels */
    sb.WriteString("    entry " + nm.Label(fn.Entry) + "\n")
    sb.WriteString("    exit " + nm.Label(fn.Exit) + "\n")

    /* every block */
    for _, bb := range fn.Blocks {
        sb.WriteString(nm.Label(bb.Label) + ":\n")
        for _, v := range bb.Stmts {
            sb.WriteString("    " + v.Format(nm) + "\n")
        }
        if bb.Term != nil {
            sb.WriteString("    " + bb.Term.Format(nm) + "\n")
        }
    }

    /* end of function */
    sb.WriteString("}\n")
    return sb.String()
}

// Fingerprint hashes the printed form of the function. Functions printing
// the same text have the same fingerprint, whatever their identities.
func Fingerprint(fn *Function) uint64 {
    return xxhash3.HashString(Print(fn))
}

// PrintAll dumps every function, separated by blank lines.
func PrintAll(fns []*Function) string {
    ret := make([]string, 0, len(fns))
    for _, fn := range fns { ret = append(ret, Print(fn)) }
    return strings.Join(ret, "\n")
}
