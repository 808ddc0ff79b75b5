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
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/realm"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// installJSON builds the %JSON% namespace object (§25.5): stringify/parse,
// neither constructible nor callable.
func installJSON(r *realm.Realm) {
	c := newCtx(r)

	j := c.newObject(r.IntrinsicPrototype("Object"))

	c.method(j, "stringify", 3, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		indent, err := jsonIndent(rt, arg(args, 2))
		if err != nil {
			return value.Value{}, err
		}

		ser := &jsonSerializer{rt: rt, indent: indent, seen: map[*object.Object]bool{}}

		holder := c.newObject(r.IntrinsicPrototype("Object"))
		_, _ = holder.DefineOwnProperty(r, key(""), object.PropertyDescriptor{
			Value: arg(args, 0), HasValue: true, Writable: true, Enumerable: true, Configurable: true,
		})

		s, ok, err := ser.str("", value.Obj(holder.Self()))
		if err != nil {
			return value.Value{}, err
		}

		if !ok {
			return value.Undefined(), nil
		}

		return value.StrFromGo(s), nil
	})

	c.method(j, "parse", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		text, err := toGoString(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		p := &jsonParser{rt: rt, s: text, r: r}
		p.skipWS()

		v, err := p.parseValue()
		if err != nil {
			return value.Value{}, err
		}

		p.skipWS()

		if p.pos != len(p.s) {
			return value.Value{}, throwSyntax(rt, "unexpected trailing characters in JSON")
		}

		reviver := arg(args, 1)
		if isCallable(reviver) {
			holder := c.newObject(r.IntrinsicPrototype("Object"))
			_, _ = holder.DefineOwnProperty(r, key(""), object.PropertyDescriptor{
				Value: v, HasValue: true, Writable: true, Enumerable: true, Configurable: true,
			})

			return jsonRevive(rt, holder, "", reviver)
		}

		return v, nil
	})

	c.define("JSON", value.Obj(j.Self()))
}

func jsonIndent(rt object.Runtime, v value.Value) (string, error) {
	if v.IsUndefined() {
		return "", nil
	}

	if v.Kind() == value.KindInteger || v.Kind() == value.KindRational {
		n, err := toInteger(rt, v)
		if err != nil {
			return "", err
		}

		if n > 10 {
			n = 10
		}

		if n <= 0 {
			return "", nil
		}

		return strings.Repeat(" ", int(n)), nil
	}

	if v.Kind() == value.KindString {
		s := v.JSString().String()
		if len(s) > 10 {
			s = s[:10]
		}

		return s, nil
	}

	return "", nil
}

// jsonSerializer implements SerializeJSONProperty/JO/JA (§25.5.2): a single
// pass that honors toJSON methods, skips undefined/function/symbol values,
// and detects circular references via the seen set.
type jsonSerializer struct {
	rt     object.Runtime
	indent string
	depth  int
	seen   map[*object.Object]bool
}

func (s *jsonSerializer) str(key string, holder value.Value) (string, bool, error) {
	h, _ := holder.AsObject()
	o, _ := h.Get().(*object.Object)

	v, err := o.Get(s.rt, propKeyFor(key), holder)
	if err != nil {
		return "", false, err
	}

	if ho, ok := v.AsObject(); ok {
		if obj, ok := ho.Get().(*object.Object); ok {
			toJSON, err := obj.Get(s.rt, propKeyFor("toJSON"), v)
			if err != nil {
				return "", false, err
			}

			if isCallable(toJSON) {
				v, err = callValue(s.rt, toJSON, v, []value.Value{value.StrFromGo(key)})
				if err != nil {
					return "", false, err
				}
			}
		}
	}

	switch v.Kind() {
	case value.KindNull:
		return "null", true, nil
	case value.KindBoolean:
		if v.Bool() {
			return "true", true, nil
		}

		return "false", true, nil
	case value.KindString:
		return quoteJSON(v.JSString().String()), true, nil
	case value.KindInteger, value.KindRational:
		f, err := toFloat64(s.rt, v)
		if err != nil {
			return "", false, err
		}

		if f != f || math.IsInf(f, 0) {
			return "null", true, nil
		}

		return strconv.FormatFloat(f, 'g', -1, 64), true, nil
	case value.KindObject:
		return s.object(v)
	default:
		return "", false, nil
	}
}

func (s *jsonSerializer) object(v value.Value) (string, bool, error) {
	h, _ := v.AsObject()
	o, _ := h.Get().(*object.Object)

	if o == nil || o.IsCallable() {
		return "", false, nil
	}

	if s.seen[o] {
		return "", false, throwType(s.rt, "converting circular structure to JSON")
	}

	s.seen[o] = true
	defer delete(s.seen, o)

	s.depth++
	defer func() { s.depth-- }()

	if o.Kind() == object.KindArray {
		return s.array(o, v)
	}

	return s.plainObject(o, v)
}

func (s *jsonSerializer) array(o *object.Object, v value.Value) (string, bool, error) {
	n := o.Length()

	if n == 0 {
		return "[]", true, nil
	}

	parts := make([]string, n)

	for i := uint32(0); i < n; i++ {
		elemKey := strconv.FormatUint(uint64(i), 10)

		elem, _, err := s.str(elemKey, v)
		if err != nil {
			return "", false, err
		}

		if elem == "" {
			elem = "null"
		}

		parts[i] = elem
	}

	return s.wrap("[", "]", parts), true, nil
}

func (s *jsonSerializer) plainObject(o *object.Object, v value.Value) (string, bool, error) {
	var parts []string

	for _, k := range o.OwnPropertyKeys() {
		if k.IsSymbol() {
			continue
		}

		desc, ok := o.GetOwnProperty(k)
		if !ok || !desc.Enumerable {
			continue
		}

		name := k.String().String()

		elem, has, err := s.str(name, v)
		if err != nil {
			return "", false, err
		}

		if !has {
			continue
		}

		sep := ":"
		if s.indent != "" {
			sep = ": "
		}

		parts = append(parts, quoteJSON(name)+sep+elem)
	}

	if len(parts) == 0 {
		return "{}", true, nil
	}

	return s.wrap("{", "}", parts), true, nil
}

func (s *jsonSerializer) wrap(open, close string, parts []string) string {
	if s.indent == "" {
		return open + strings.Join(parts, ",") + close
	}

	pad := strings.Repeat(s.indent, s.depth)
	innerPad := strings.Repeat(s.indent, s.depth+1)

	return open + "\n" + innerPad + strings.Join(parts, ",\n"+innerPad) + "\n" + pad + close
}

func propKeyFor(name string) value.PropertyKey { return key(name) }

// quoteJSON implements Quote (§25.5.2.2): a JSON string literal with the
// standard escapes plus \uXXXX for control characters and lone surrogates.
func quoteJSON(s string) string {
	var b strings.Builder
	b.WriteByte('"')

	for _, unit := range utf16.Encode([]rune(s)) {
		switch unit {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if unit < 0x20 || (unit >= 0xD800 && unit <= 0xDFFF) {
				fmt.Fprintf(&b, `\u%04x`, unit)
			} else {
				b.WriteRune(rune(unit))
			}
		}
	}

	b.WriteByte('"')

	return b.String()
}

// jsonRevive implements InternalizeJSONProperty (§25.5.1.1): walks the
// freshly-parsed value bottom-up, calling reviver(key, value) on every
// property and replacing/deleting per its result.
func jsonRevive(rt object.Runtime, holder *object.Object, name string, reviver value.Value) (value.Value, error) {
	val, err := holder.Get(rt, propKeyFor(name), value.Obj(holder.Self()))
	if err != nil {
		return value.Value{}, err
	}

	if h, ok := val.AsObject(); ok {
		if obj, ok := h.Get().(*object.Object); ok {
			if obj.Kind() == object.KindArray {
				n := obj.Length()

				for i := uint32(0); i < n; i++ {
					elemKey := strconv.FormatUint(uint64(i), 10)

					newElem, err := jsonRevive(rt, obj, elemKey, reviver)
					if err != nil {
						return value.Value{}, err
					}

					if newElem.IsUndefined() {
						_ = obj.Delete(propKeyFor(elemKey))
					} else {
						_, _ = obj.DefineOwnProperty(rt, propKeyFor(elemKey), object.PropertyDescriptor{
							Value: newElem, HasValue: true, Writable: true, Enumerable: true, Configurable: true,
						})
					}
				}
			} else {
				for _, k := range obj.OwnPropertyKeys() {
					if k.IsSymbol() {
						continue
					}

					desc, ok := obj.GetOwnProperty(k)
					if !ok || !desc.Enumerable {
						continue
					}

					propName := k.String().String()

					newElem, err := jsonRevive(rt, obj, propName, reviver)
					if err != nil {
						return value.Value{}, err
					}

					if newElem.IsUndefined() {
						_ = obj.Delete(k)
					} else {
						_, _ = obj.DefineOwnProperty(rt, k, object.PropertyDescriptor{
							Value: newElem, HasValue: true, Writable: true, Enumerable: true, Configurable: true,
						})
					}
				}
			}
		}
	}

	return callValue(rt, reviver, value.Obj(holder.Self()), []value.Value{value.StrFromGo(name), val})
}

func throwSyntax(rt object.Runtime, format string, a ...any) error {
	v := rt.NewError("SyntaxError", fmt.Sprintf(format, a...))
	return &thrown{v: v}
}

// jsonParser is a straightforward recursive-descent JSON parser (RFC 8259 /
// §25.5.1's ParseJSON), operating directly over the Go string since JSON
// text is, by construction, ASCII-structural with only string-literal
// payloads needing UTF-16 fidelity (handled via \uXXXX escapes same as any
// other source text).
type jsonParser struct {
	rt  object.Runtime
	s   string
	pos int
	r   *realm.Realm
}

func (p *jsonParser) skipWS() {
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *jsonParser) peek() (byte, bool) {
	if p.pos >= len(p.s) {
		return 0, false
	}

	return p.s[p.pos], true
}

func (p *jsonParser) parseValue() (value.Value, error) {
	b, ok := p.peek()
	if !ok {
		return value.Value{}, throwSyntax(p.rt, "unexpected end of JSON input")
	}

	switch {
	case b == '{':
		return p.parseObject()
	case b == '[':
		return p.parseArray()
	case b == '"':
		s, err := p.parseString()
		if err != nil {
			return value.Value{}, err
		}

		return value.StrFromGo(s), nil
	case b == 't':
		return p.parseLiteral("true", value.Bool(true))
	case b == 'f':
		return p.parseLiteral("false", value.Bool(false))
	case b == 'n':
		return p.parseLiteral("null", value.Null())
	case b == '-' || (b >= '0' && b <= '9'):
		return p.parseNumber()
	default:
		return value.Value{}, throwSyntax(p.rt, "unexpected token %q in JSON", b)
	}
}

func (p *jsonParser) parseLiteral(lit string, v value.Value) (value.Value, error) {
	if p.pos+len(lit) > len(p.s) || p.s[p.pos:p.pos+len(lit)] != lit {
		return value.Value{}, throwSyntax(p.rt, "unexpected token in JSON")
	}

	p.pos += len(lit)

	return v, nil
}

func (p *jsonParser) parseNumber() (value.Value, error) {
	start := p.pos

	if p.pos < len(p.s) && p.s[p.pos] == '-' {
		p.pos++
	}

	for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
		p.pos++
	}

	if p.pos < len(p.s) && p.s[p.pos] == '.' {
		p.pos++
		for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
			p.pos++
		}
	}

	if p.pos < len(p.s) && (p.s[p.pos] == 'e' || p.s[p.pos] == 'E') {
		p.pos++
		if p.pos < len(p.s) && (p.s[p.pos] == '+' || p.s[p.pos] == '-') {
			p.pos++
		}

		for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
			p.pos++
		}
	}

	lit := p.s[start:p.pos]

	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return value.Value{}, throwSyntax(p.rt, "invalid number %q in JSON", lit)
	}

	return value.Float(f), nil
}

func (p *jsonParser) parseString() (string, error) {
	if p.pos >= len(p.s) || p.s[p.pos] != '"' {
		return "", throwSyntax(p.rt, "expected string in JSON")
	}

	p.pos++

	var b strings.Builder

	for {
		if p.pos >= len(p.s) {
			return "", throwSyntax(p.rt, "unterminated string in JSON")
		}

		c := p.s[p.pos]

		if c == '"' {
			p.pos++
			return b.String(), nil
		}

		if c == '\\' {
			p.pos++
			if p.pos >= len(p.s) {
				return "", throwSyntax(p.rt, "unterminated escape in JSON")
			}

			esc := p.s[p.pos]
			p.pos++

			switch esc {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case '/':
				b.WriteByte('/')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'u':
				if p.pos+4 > len(p.s) {
					return "", throwSyntax(p.rt, "invalid \\u escape in JSON")
				}

				n, err := strconv.ParseUint(p.s[p.pos:p.pos+4], 16, 32)
				if err != nil {
					return "", throwSyntax(p.rt, "invalid \\u escape in JSON")
				}

				p.pos += 4
				b.WriteRune(rune(n))
			default:
				return "", throwSyntax(p.rt, "invalid escape %q in JSON", esc)
			}

			continue
		}

		b.WriteByte(c)
		p.pos++
	}
}

func (p *jsonParser) parseArray() (value.Value, error) {
	p.pos++ // '['
	c := newCtx(p.r)

	var vals []value.Value

	p.skipWS()

	if b, ok := p.peek(); ok && b == ']' {
		p.pos++
		return c.newArrayOf(vals), nil
	}

	for {
		p.skipWS()

		v, err := p.parseValue()
		if err != nil {
			return value.Value{}, err
		}

		vals = append(vals, v)

		p.skipWS()

		b, ok := p.peek()
		if !ok {
			return value.Value{}, throwSyntax(p.rt, "unterminated array in JSON")
		}

		if b == ',' {
			p.pos++
			continue
		}

		if b == ']' {
			p.pos++
			return c.newArrayOf(vals), nil
		}

		return value.Value{}, throwSyntax(p.rt, "expected ',' or ']' in JSON array")
	}
}

func (p *jsonParser) parseObject() (value.Value, error) {
	p.pos++ // '{'
	c := newCtx(p.r)

	obj := c.newObject(p.r.IntrinsicPrototype("Object"))

	p.skipWS()

	if b, ok := p.peek(); ok && b == '}' {
		p.pos++
		return value.Obj(obj.Self()), nil
	}

	for {
		p.skipWS()

		k, err := p.parseString()
		if err != nil {
			return value.Value{}, err
		}

		p.skipWS()

		if b, ok := p.peek(); !ok || b != ':' {
			return value.Value{}, throwSyntax(p.rt, "expected ':' in JSON object")
		}

		p.pos++
		p.skipWS()

		v, err := p.parseValue()
		if err != nil {
			return value.Value{}, err
		}

		_, _ = obj.DefineOwnProperty(p.r, key(k), object.PropertyDescriptor{
			Value: v, HasValue: true, Writable: true, Enumerable: true, Configurable: true,
		})

		p.skipWS()

		b, ok := p.peek()
		if !ok {
			return value.Value{}, throwSyntax(p.rt, "unterminated object in JSON")
		}

		if b == ',' {
			p.pos++
			continue
		}

		if b == '}' {
			p.pos++
			return value.Obj(obj.Self()), nil
		}

		return value.Value{}, throwSyntax(p.rt, "expected ',' or '}' in JSON object")
	}
}
