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
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/realm"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// installGlobalFunctions installs §19's free-standing global-object
// functions and the `globalThis` self-reference — everything that is not a
// constructor or namespace object and so has no home in its own family
// file.
func installGlobalFunctions(r *realm.Realm) {
	c := newCtx(r)

	c.define("globalThis", value.Obj(r.GlobalObjectRef()))

	c.define("NaN", value.Float(math.NaN()))
	c.define("Infinity", value.Float(math.Inf(1)))
	c.define("undefined", value.Undefined())

	c.define("parseInt", c.nativeFunction("parseInt", 2, globalParseInt))
	c.define("parseFloat", c.nativeFunction("parseFloat", 1, globalParseFloat))
	c.define("isNaN", c.nativeFunction("isNaN", 1, globalIsNaN))
	c.define("isFinite", c.nativeFunction("isFinite", 1, globalIsFinite))

	c.define("encodeURI", c.nativeFunction("encodeURI", 1, uriEncoder(uriReservedEncode)))
	c.define("encodeURIComponent", c.nativeFunction("encodeURIComponent", 1, uriEncoder(uriComponentEncode)))
	c.define("decodeURI", c.nativeFunction("decodeURI", 1, uriDecoder()))
	c.define("decodeURIComponent", c.nativeFunction("decodeURIComponent", 1, uriDecoder()))
}

// globalParseInt implements §19.2.5, trimming leading whitespace, an
// optional sign, an optional "0x"/"0X" prefix (only honoured when radix is
// 0 or 16), and as long a prefix of digits valid in the resulting radix as
// it can find — never erroring, returning NaN when no digit is found.
func globalParseInt(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
	s, err := toGoString(rt, arg(args, 0))
	if err != nil {
		return value.Value{}, err
	}

	radix, err := toInteger(rt, arg(args, 1))
	if err != nil {
		return value.Value{}, err
	}

	s = strings.TrimSpace(s)

	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	r := int(radix)
	if r == 0 {
		r = 10
	}

	if (r == 16 || radix == 0) && (strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		s = s[2:]
		r = 16
	}

	if r < 2 || r > 36 {
		return value.Float(math.NaN()), nil
	}

	end := 0
	for end < len(s) && digitValue(s[end]) < r {
		end++
	}

	if end == 0 {
		return value.Float(math.NaN()), nil
	}

	n, err := strconv.ParseUint(s[:end], r, 64)
	if err != nil {
		// overflow for very long digit runs: fall back to float accumulation.
		f := 0.0
		for i := 0; i < end; i++ {
			f = f*float64(r) + float64(digitValue(s[i]))
		}

		if neg {
			f = -f
		}

		return value.Float(f), nil
	}

	f := float64(n)
	if neg {
		f = -f
	}

	return value.Float(f), nil
}

// globalParseFloat implements §19.2.4: the longest prefix of the trimmed
// input matching a StrDecimalLiteral, or NaN.
func globalParseFloat(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
	s, err := toGoString(rt, arg(args, 0))
	if err != nil {
		return value.Value{}, err
	}

	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "Infinity") || strings.HasPrefix(s, "+Infinity") {
		return value.Float(math.Inf(1)), nil
	}

	if strings.HasPrefix(s, "-Infinity") {
		return value.Float(math.Inf(-1)), nil
	}

	end := 0
	seenDot, seenExp, seenDigit := false, false, false

	for end < len(s) {
		c := s[end]
		switch {
		case c >= '0' && c <= '9':
			seenDigit = true
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
		case (c == 'e' || c == 'E') && seenDigit && !seenExp:
			seenExp = true
			if end+1 < len(s) && (s[end+1] == '+' || s[end+1] == '-') {
				end++
			}
		case (c == '+' || c == '-') && end == 0:
			// leading sign, handled naturally by the loop continuing.
		default:
			goto done
		}

		end++
	}

done:
	if !seenDigit {
		return value.Float(math.NaN()), nil
	}

	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return value.Float(math.NaN()), nil
	}

	return value.Float(f), nil
}

func globalIsNaN(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
	f, err := toFloat64(rt, arg(args, 0))
	if err != nil {
		return value.Value{}, err
	}

	return value.Bool(math.IsNaN(f)), nil
}

func globalIsFinite(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
	f, err := toFloat64(rt, arg(args, 0))
	if err != nil {
		return value.Value{}, err
	}

	return value.Bool(!math.IsNaN(f) && !math.IsInf(f, 0)), nil
}

// uriReservedEncode/uriComponentEncode name the two unreserved-character
// sets §19.2.6's encodeURI/encodeURIComponent use — the former additionally
// leaves URI-reserved delimiters (";/?:@&=+$,#") untouched.
const (
	uriUnreserved      = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_.!~*'()"
	uriReservedExtra   = ";/?:@&=+$,#"
	uriReservedEncode  = uriUnreserved + uriReservedExtra
	uriComponentEncode = uriUnreserved
)

func uriEncoder(keep string) object.NativeFunc {
	return func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		s, err := toGoString(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		var b strings.Builder

		for _, r := range s {
			if r < 0x80 && strings.ContainsRune(keep, r) {
				b.WriteRune(r)
				continue
			}

			for _, by := range []byte(string(r)) {
				b.WriteString("%")
				b.WriteString(strings.ToUpper(strconv.FormatUint(uint64(by), 16)))
			}
		}

		return value.StrFromGo(b.String()), nil
	}
}

// uriDecoder decodes %XX escapes via net/url's percent-decoding table
// (malformed escapes surface as a URIError the way §19.2.6.1's Decode
// abstract operation requires). decodeURI and decodeURIComponent decode
// identically here since net/url doesn't distinguish their un-escape sets.
func uriDecoder() object.NativeFunc {
	return func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		s, err := toGoString(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		decoded, derr := url.QueryUnescape(strings.ReplaceAll(s, "+", "%2B"))
		if derr != nil {
			v := rt.NewError("URIError", "URI malformed")
			return value.Value{}, &thrown{v: v}
		}

		return value.StrFromGo(decoded), nil
	}
}
