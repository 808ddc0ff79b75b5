// Copyright Ecmaforge Authors
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
package builtins

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ecmaforge/ecmaforge/pkg/heap"
	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/realm"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// regexpData backs %RegExp% instances (§22.2). Matching is implemented on
// top of the standard library's RE2 engine, which does not support
// backreferences or lookaround assertions — no pack example carries a
// backtracking regex engine (e.g. a PCRE/Oniguruma binding), so patterns
// using those features fail to compile with a SyntaxError rather than
// silently matching something different. translateJSPattern handles the
// syntax that does carry over directly (named captures use `?P<name>`
// instead of `?<name>`).
type regexpData struct {
	re                                            *regexp.Regexp
	source                                        string
	flags                                          string
	global, ignoreCase, multiline, dotAll, sticky bool
	unicode, hasIndices                           bool
}

// translateJSPattern rewrites the syntax differences between an ECMAScript
// pattern and Go's RE2 syntax that this engine chooses to support: named
// capture groups `(?<name>...)` become `(?P<name>...)`. A backslash escape
// or a character class is passed through untouched so `(?<` appearing
// inside either is never misread as a group header.
func translateJSPattern(src string) string {
	var b strings.Builder

	inClass := false

	for i := 0; i < len(src); i++ {
		ch := src[i]

		switch {
		case ch == '\\' && i+1 < len(src):
			b.WriteByte(ch)
			b.WriteByte(src[i+1])
			i++

			continue
		case ch == '[':
			inClass = true
		case ch == ']':
			inClass = false
		case !inClass && ch == '(' && i+2 < len(src) && src[i+1] == '?' && src[i+2] == '<' &&
			i+3 < len(src) && src[i+3] != '=' && src[i+3] != '!':
			b.WriteString("(?P<")
			i += 2

			continue
		}

		b.WriteByte(ch)
	}

	return b.String()
}

func compileJSRegExp(rt object.Runtime, pattern, flags string) (*regexpData, error) {
	d := &regexpData{source: pattern, flags: flags}

	for _, f := range flags {
		switch f {
		case 'g':
			d.global = true
		case 'i':
			d.ignoreCase = true
		case 'm':
			d.multiline = true
		case 's':
			d.dotAll = true
		case 'y':
			d.sticky = true
		case 'u', 'v':
			d.unicode = true
		case 'd':
			d.hasIndices = true
		default:
			return nil, throwSyntax(rt, "invalid regular expression flag %q", string(f))
		}
	}

	var inline strings.Builder
	if d.ignoreCase {
		inline.WriteByte('i')
	}

	if d.multiline {
		inline.WriteByte('m')
	}

	if d.dotAll {
		inline.WriteByte('s')
	}

	translated := translateJSPattern(pattern)
	if inline.Len() > 0 {
		translated = "(?" + inline.String() + ")" + translated
	}

	re, err := regexp.Compile(translated)
	if err != nil {
		return nil, throwSyntax(rt, "invalid regular expression: %s", err.Error())
	}

	re.Longest()
	d.re = re

	return d, nil
}

func mustRegExpData(rt object.Runtime, this value.Value, what string) (*object.Object, *regexpData, error) {
	h, ok := this.AsObject()
	if !ok {
		return nil, nil, throwType(rt, "%s called on a non-object", what)
	}

	o, ok := h.Get().(*object.Object)
	if !ok {
		return nil, nil, throwType(rt, "%s called on a non-object", what)
	}

	d, ok := o.Data().(*regexpData)
	if !ok {
		return nil, nil, throwType(rt, "%s called on incompatible receiver", what)
	}

	return o, d, nil
}

func regexpLastIndex(rt object.Runtime, o *object.Object) (int, error) {
	v, err := o.Get(rt, key("lastIndex"), value.Obj(o.Self()))
	if err != nil {
		return 0, err
	}

	n, err := toInteger(rt, v)
	if err != nil {
		return 0, err
	}

	return int(n), nil
}

func setRegexpLastIndex(rt object.Runtime, o *object.Object, n int) {
	_ = o.Set(rt, key("lastIndex"), value.Int(int32(n)), value.Obj(o.Self()), false)
}

// regexpExec implements RegExpBuiltinExec (§22.2.7.2): the shared matching
// core every String/RegExp method ultimately calls through.
func (c ctx) regexpExec(rt object.Runtime, o *object.Object, d *regexpData, s string) (value.Value, error) {
	lastIndex := 0

	if d.global || d.sticky {
		li, err := regexpLastIndex(rt, o)
		if err != nil {
			return value.Value{}, err
		}

		lastIndex = li
	}

	if lastIndex < 0 || lastIndex > len(s) {
		if d.global || d.sticky {
			setRegexpLastIndex(rt, o, 0)
		}

		return value.Null(), nil
	}

	loc := d.re.FindStringSubmatchIndex(s[lastIndex:])
	if loc == nil || (d.sticky && loc[0] != 0) {
		if d.global || d.sticky {
			setRegexpLastIndex(rt, o, 0)
		}

		return value.Null(), nil
	}

	if d.global || d.sticky {
		setRegexpLastIndex(rt, o, lastIndex+loc[1])
	}

	return c.buildMatchResult(d, s, lastIndex, loc), nil
}

func (c ctx) buildMatchResult(d *regexpData, s string, base int, loc []int) value.Value {
	groups := make([]value.Value, 0, len(loc)/2)

	for i := 0; i < len(loc); i += 2 {
		if loc[i] < 0 {
			groups = append(groups, value.Undefined())
			continue
		}

		groups = append(groups, value.StrFromGo(s[base+loc[i]:base+loc[i+1]]))
	}

	arr := c.newArrayOf(groups)
	arrObj, _ := arr.AsObject()
	ao, _ := arrObj.Get().(*object.Object)

	_, _ = ao.DefineOwnProperty(c.r, key("index"), object.PropertyDescriptor{
		Value: value.Int(int32(base + loc[0])), HasValue: true, Writable: true, Enumerable: true, Configurable: true,
	})
	_, _ = ao.DefineOwnProperty(c.r, key("input"), object.PropertyDescriptor{
		Value: value.StrFromGo(s), HasValue: true, Writable: true, Enumerable: true, Configurable: true,
	})

	names := d.re.SubexpNames()

	hasNamed := false

	for _, n := range names {
		if n != "" {
			hasNamed = true
			break
		}
	}

	if hasNamed {
		groupsObj := c.newObject(heap.Gc[value.HeapObject]{})

		for i, n := range names {
			if n == "" || i == 0 {
				continue
			}

			_, _ = groupsObj.DefineOwnProperty(c.r, key(n), object.PropertyDescriptor{
				Value: groups[i], HasValue: true, Writable: true, Enumerable: true, Configurable: true,
			})
		}

		_, _ = ao.DefineOwnProperty(c.r, key("groups"), object.PropertyDescriptor{
			Value: value.Obj(groupsObj.Self()), HasValue: true, Writable: true, Enumerable: true, Configurable: true,
		})
	} else {
		_, _ = ao.DefineOwnProperty(c.r, key("groups"), object.PropertyDescriptor{
			Value: value.Undefined(), HasValue: true, Writable: true, Enumerable: true, Configurable: true,
		})
	}

	return arr
}

func installRegExp(r *realm.Realm) {
	c := newCtx(r)

	proto := c.newObject(r.IntrinsicPrototype("Object"))
	protoRef := proto.Self()

	ctorVal, ctorObj := c.nativeConstructor("RegExp", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		pattern := arg(args, 0)
		flagsArg := arg(args, 1)

		source := ""
		flags := ""

		if h, ok := pattern.AsObject(); ok {
			if o, ok := h.Get().(*object.Object); ok {
				if existing, ok := o.Data().(*regexpData); ok {
					source = existing.source
					flags = existing.flags

					if !flagsArg.IsUndefined() {
						f, err := toGoString(rt, flagsArg)
						if err != nil {
							return value.Value{}, err
						}

						flags = f
					}
				}
			}
		}

		if source == "" && flags == "" {
			if !pattern.IsUndefined() {
				s, err := toGoString(rt, pattern)
				if err != nil {
					return value.Value{}, err
				}

				source = s
			}

			if !flagsArg.IsUndefined() {
				f, err := toGoString(rt, flagsArg)
				if err != nil {
					return value.Value{}, err
				}

				flags = f
			}
		}

		d, err := compileJSRegExp(rt, source, flags)
		if err != nil {
			return value.Value{}, err
		}

		obj := object.New(r.ShapeRoot(), "RegExp", object.KindRegExp, r.IntrinsicPrototype("RegExp"))
		obj.SetData(d)
		ref := heap.NewGc[value.HeapObject](r.Heap(), obj, nil)
		obj.SetSelf(ref)

		_, _ = obj.DefineOwnProperty(rt, key("lastIndex"), object.PropertyDescriptor{
			Value: value.Int(0), HasValue: true, Writable: true, Enumerable: false, Configurable: false,
		})

		return value.Obj(ref), nil
	})

	c.definePrototype("RegExp", ctorVal, ctorObj, proto, protoRef)
	c.define("RegExp", ctorVal)

	c.dataValue(proto, "source", value.StrFromGo("(?:)"), false)
	c.dataValue(proto, "flags", value.StrFromGo(""), false)

	flagProp := func(name string, pick func(d *regexpData) bool) {
		c.accessor(proto, name, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
			_, d, err := mustRegExpData(rt, this, "RegExp.prototype."+name)
			if err != nil {
				return value.Value{}, err
			}

			return value.Bool(pick(d)), nil
		})
	}

	flagProp("global", func(d *regexpData) bool { return d.global })
	flagProp("ignoreCase", func(d *regexpData) bool { return d.ignoreCase })
	flagProp("multiline", func(d *regexpData) bool { return d.multiline })
	flagProp("dotAll", func(d *regexpData) bool { return d.dotAll })
	flagProp("sticky", func(d *regexpData) bool { return d.sticky })
	flagProp("unicode", func(d *regexpData) bool { return d.unicode })
	flagProp("hasIndices", func(d *regexpData) bool { return d.hasIndices })

	c.accessor(proto, "source", func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustRegExpData(rt, this, "RegExp.prototype.source")
		if err != nil {
			return value.Value{}, err
		}

		if d.source == "" {
			return value.StrFromGo("(?:)"), nil
		}

		return value.StrFromGo(d.source), nil
	})

	c.accessor(proto, "flags", func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustRegExpData(rt, this, "RegExp.prototype.flags")
		if err != nil {
			return value.Value{}, err
		}

		return value.StrFromGo(d.flags), nil
	})

	c.method(proto, "exec", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, d, err := mustRegExpData(rt, this, "RegExp.prototype.exec")
		if err != nil {
			return value.Value{}, err
		}

		s, err := toGoString(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		return c.regexpExec(rt, o, d, s)
	})

	c.method(proto, "test", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, d, err := mustRegExpData(rt, this, "RegExp.prototype.test")
		if err != nil {
			return value.Value{}, err
		}

		s, err := toGoString(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		res, err := c.regexpExec(rt, o, d, s)
		if err != nil {
			return value.Value{}, err
		}

		return value.Bool(!res.IsNullish()), nil
	})

	c.method(proto, "toString", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustRegExpData(rt, this, "RegExp.prototype.toString")
		if err != nil {
			return value.Value{}, err
		}

		src := d.source
		if src == "" {
			src = "(?:)"
		}

		return value.StrFromGo("/" + src + "/" + d.flags), nil
	})

	c.symbolMethod(proto, value.SymbolMatch, "[Symbol.match]", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, d, err := mustRegExpData(rt, this, "RegExp.prototype[Symbol.match]")
		if err != nil {
			return value.Value{}, err
		}

		s, err := toGoString(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		if !d.global {
			return c.regexpExec(rt, o, d, s)
		}

		setRegexpLastIndex(rt, o, 0)

		var out []value.Value

		for {
			res, err := c.regexpExec(rt, o, d, s)
			if err != nil {
				return value.Value{}, err
			}

			if res.IsNullish() {
				break
			}

			h, _ := res.AsObject()
			ro, _ := h.Get().(*object.Object)
			m, _ := ro.Get(rt, key("0"), res)
			out = append(out, m)

			ms, _ := toGoString(rt, m)
			if ms == "" {
				li, _ := regexpLastIndex(rt, o)
				setRegexpLastIndex(rt, o, li+1)
			}
		}

		if len(out) == 0 {
			return value.Null(), nil
		}

		return c.newArrayOf(out), nil
	})

	c.symbolMethod(proto, value.SymbolMatchAll, "[Symbol.matchAll]", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustRegExpData(rt, this, "RegExp.prototype[Symbol.matchAll]")
		if err != nil {
			return value.Value{}, err
		}

		if !d.global {
			return value.Value{}, throwType(rt, "String.prototype.matchAll requires a global RegExp")
		}

		s, err := toGoString(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		clone, err := compileJSRegExp(rt, d.source, d.flags)
		if err != nil {
			return value.Value{}, err
		}

		cloneObj := object.New(r.ShapeRoot(), "RegExp", object.KindRegExp, r.IntrinsicPrototype("RegExp"))
		cloneObj.SetData(clone)
		cloneRef := heap.NewGc[value.HeapObject](r.Heap(), cloneObj, nil)
		cloneObj.SetSelf(cloneRef)
		_, _ = cloneObj.DefineOwnProperty(rt, key("lastIndex"), object.PropertyDescriptor{
			Value: value.Int(0), HasValue: true, Writable: true,
		})

		return newRegExpMatchAllIterator(c, rt, cloneObj, clone, s), nil
	})

	c.symbolMethod(proto, value.SymbolSearch, "[Symbol.search]", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, d, err := mustRegExpData(rt, this, "RegExp.prototype[Symbol.search]")
		if err != nil {
			return value.Value{}, err
		}

		s, err := toGoString(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		loc := d.re.FindStringIndex(s)
		if loc == nil {
			return value.Int(-1), nil
		}

		_ = o

		return value.Int(int32(loc[0])), nil
	})

	c.symbolMethod(proto, value.SymbolSplit, "[Symbol.split]", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustRegExpData(rt, this, "RegExp.prototype[Symbol.split]")
		if err != nil {
			return value.Value{}, err
		}

		s, err := toGoString(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		limit := int64(-1)
		if !arg(args, 1).IsUndefined() {
			n, err := toInteger(rt, arg(args, 1))
			if err != nil {
				return value.Value{}, err
			}

			limit = n
		}

		var out []value.Value

		if s == "" {
			if d.re.FindStringIndex("") == nil {
				out = append(out, value.StrFromGo(""))
			}

			return c.newArrayOf(out), nil
		}

		last := 0

		for _, loc := range d.re.FindAllStringSubmatchIndex(s, -1) {
			if loc[0] == loc[1] && loc[0] == last {
				continue
			}

			if loc[0] >= len(s) {
				break
			}

			out = append(out, value.StrFromGo(s[last:loc[0]]))

			for i := 2; i < len(loc); i += 2 {
				if loc[i] < 0 {
					out = append(out, value.Undefined())
					continue
				}

				out = append(out, value.StrFromGo(s[loc[i]:loc[i+1]]))
			}

			last = loc[1]

			if limit >= 0 && int64(len(out)) >= limit {
				return c.newArrayOf(out[:limit]), nil
			}
		}

		out = append(out, value.StrFromGo(s[last:]))

		if limit >= 0 && int64(len(out)) > limit {
			out = out[:limit]
		}

		return c.newArrayOf(out), nil
	})

	c.symbolMethod(proto, value.SymbolReplace, "[Symbol.replace]", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, d, err := mustRegExpData(rt, this, "RegExp.prototype[Symbol.replace]")
		if err != nil {
			return value.Value{}, err
		}

		s, err := toGoString(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		replacement := arg(args, 1)

		var locs [][]int

		if d.global {
			setRegexpLastIndex(rt, o, 0)
			locs = d.re.FindAllStringSubmatchIndex(s, -1)
		} else if loc := d.re.FindStringSubmatchIndex(s); loc != nil {
			locs = [][]int{loc}
		}

		if len(locs) == 0 {
			return value.StrFromGo(s), nil
		}

		var b strings.Builder

		last := 0
		names := d.re.SubexpNames()

		for _, loc := range locs {
			b.WriteString(s[last:loc[0]])

			var repl string

			if isCallable(replacement) {
				callArgs := []value.Value{}

				for i := 0; i < len(loc); i += 2 {
					if loc[i] < 0 {
						callArgs = append(callArgs, value.Undefined())
						continue
					}

					callArgs = append(callArgs, value.StrFromGo(s[loc[i]:loc[i+1]]))
				}

				callArgs = append(callArgs, value.Int(int32(loc[0])), value.StrFromGo(s))

				res, err := callValue(rt, replacement, value.Undefined(), callArgs)
				if err != nil {
					return value.Value{}, err
				}

				repl, err = toGoString(rt, res)
				if err != nil {
					return value.Value{}, err
				}
			} else {
				tmpl, err := toGoString(rt, replacement)
				if err != nil {
					return value.Value{}, err
				}

				repl = expandReplacement(tmpl, s, loc, names)
			}

			b.WriteString(repl)
			last = loc[1]
		}

		b.WriteString(s[last:])

		return value.StrFromGo(b.String()), nil
	})
}

// expandReplacement implements GetSubstitution's `$&`/`$1`../`$<name>`
// template expansion (§22.2.7.4 / String.prototype.replace's shared spec).
func expandReplacement(tmpl, s string, loc []int, names []string) string {
	var b strings.Builder

	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '$' || i+1 >= len(tmpl) {
			b.WriteByte(tmpl[i])
			continue
		}

		switch next := tmpl[i+1]; {
		case next == '$':
			b.WriteByte('$')
			i++
		case next == '&':
			b.WriteString(s[loc[0]:loc[1]])
			i++
		case next == '`':
			b.WriteString(s[:loc[0]])
			i++
		case next == '\'':
			b.WriteString(s[loc[1]:])
			i++
		case next == '<':
			end := strings.IndexByte(tmpl[i+2:], '>')
			if end < 0 {
				b.WriteByte(tmpl[i])
				continue
			}

			name := tmpl[i+2 : i+2+end]

			for gi, n := range names {
				if n == name && 2*gi+1 < len(loc) && loc[2*gi] >= 0 {
					b.WriteString(s[loc[2*gi]:loc[2*gi+1]])
				}
			}

			i += 2 + end
		case next >= '0' && next <= '9':
			j := i + 1
			for j < len(tmpl) && tmpl[j] >= '0' && tmpl[j] <= '9' {
				j++
			}

			n, _ := strconv.Atoi(tmpl[i+1 : j])
			if n > 0 && 2*n+1 < len(loc) && loc[2*n] >= 0 {
				b.WriteString(s[loc[2*n]:loc[2*n+1]])
			}

			i = j - 1
		default:
			b.WriteByte(tmpl[i])
		}
	}

	return b.String()
}

// newRegExpMatchAllIterator backs String.prototype.matchAll's returned
// iterator (§22.2.7.7): a hand-rolled iterator object over a cloned regexp
// whose own lastIndex this iterator alone advances, per-spec isolation from
// the source RegExp's lastIndex.
func newRegExpMatchAllIterator(c ctx, rt object.Runtime, o *object.Object, d *regexpData, s string) value.Value {
	iterObj := object.New(c.r.ShapeRoot(), "RegExp String Iterator", object.KindIterator, c.r.IntrinsicPrototype("Iterator"))
	ref := heap.NewGc[value.HeapObject](c.r.Heap(), iterObj, nil)
	iterObj.SetSelf(ref)

	c.method(iterObj, "next", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		res, err := c.regexpExec(rt, o, d, s)
		if err != nil {
			return value.Value{}, err
		}

		if res.IsNullish() {
			return c.iterResult(value.Undefined(), true), nil
		}

		h, _ := res.AsObject()
		ro, _ := h.Get().(*object.Object)
		m, _ := ro.Get(rt, key("0"), res)
		ms, _ := toGoString(rt, m)

		if ms == "" {
			li, _ := regexpLastIndex(rt, o)
			setRegexpLastIndex(rt, o, li+1)
		}

		return c.iterResult(res, false), nil
	})

	c.symbolMethod(iterObj, value.SymbolIterator, "[Symbol.iterator]", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return this, nil
	})

	return value.Obj(ref)
}
