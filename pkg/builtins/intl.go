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
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ecmaforge/ecmaforge/pkg/heap"
	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/realm"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// intl.go grounds §402 (Intl) on golang.org/x/text, the one dependency the
// rest of the pack only ever pulls in transitively — language.Tag for every
// locale argument, and collate.Collator for Collator/localeCompare, which is
// the actual CLDR-aware comparison x/text exposes. x/text has no public
// CLDR plural-rule or calendar-formatting API, so PluralRules/DateTimeFormat
// below fall back to a plain-English/ISO rendering documented at each site;
// everything that x/text can do (locale parsing, collation) is delegated to
// it rather than hand-rolled.

type localeData struct{ tag language.Tag }

type collatorData struct {
	col *collate.Collator
	tag language.Tag
}

type numberFormatData struct {
	tag                language.Tag
	style              string // "decimal", "percent", "currency"
	currency           string
	minFrac, maxFrac   int
	useGrouping        bool
}

type dateTimeFormatData struct {
	tag       language.Tag
	dateStyle string
	timeStyle string
}

type listFormatData struct {
	tag   language.Tag
	style string // "long", "short", "narrow"
	kind  string // "conjunction", "disjunction"
}

type pluralRulesData struct {
	tag  language.Tag
	kind string // "cardinal", "ordinal"
}

type segmenterData struct {
	tag         language.Tag
	granularity string // "grapheme", "word", "sentence"
}

// parseLocaleArg resolves a locale argument through r's Intl provider
// bundle (§3.6's IntlProviders), the ECMA-402 ResolveLocale/LookupMatcher
// negotiation every Intl constructor shares rather than each parsing and
// matching its own tag: no argument (or undefined) resolves to the realm's
// DefaultLocale, and a requested tag is negotiated against the realm's
// supported set via its Matcher rather than accepted verbatim.
func parseLocaleArg(rt object.Runtime, r *realm.Realm, v value.Value) (language.Tag, error) {
	if v.Kind() == value.KindUndefined {
		return r.Intl().DefaultLocale, nil
	}

	s, err := toGoString(rt, v)
	if err != nil {
		return language.Und, err
	}

	requested, perr := language.Parse(s)
	if perr != nil {
		return language.Und, throwRange(rt, "invalid language tag %q", s)
	}

	matched, _, _ := r.Intl().Matcher.Match(requested)

	return matched, nil
}

func mustIntlData[T any](rt object.Runtime, this value.Value, what string) (*object.Object, *T, error) {
	h, ok := this.AsObject()
	if !ok {
		return nil, nil, throwType(rt, "%s called on a non-object", what)
	}

	o, ok := h.Get().(*object.Object)
	if !ok {
		return nil, nil, throwType(rt, "%s called on a non-object", what)
	}

	d, ok := o.Data().(*T)
	if !ok {
		return nil, nil, throwType(rt, "%s called on incompatible receiver", what)
	}

	return o, d, nil
}

func newIntlObject(r *realm.Realm, protoName string, data any) value.Value {
	obj := object.New(r.ShapeRoot(), protoName, object.KindHost, r.IntrinsicPrototype(protoName))
	obj.SetData(data)
	ref := heap.NewGc[value.HeapObject](r.Heap(), obj, nil)
	obj.SetSelf(ref)

	return value.Obj(ref)
}

// installIntl installs the `Intl` namespace object (§402): Locale,
// Collator, NumberFormat, DateTimeFormat, ListFormat, PluralRules, and
// Segmenter.
func installIntl(r *realm.Realm) {
	c := newCtx(r)

	ns := c.newObject(r.IntrinsicPrototype("Object"))
	nsRef := ns.Self()

	installIntlLocale(c, r, ns)
	installIntlCollator(c, r, ns)
	installIntlNumberFormat(c, r, ns)
	installIntlDateTimeFormat(c, r, ns)
	installIntlListFormat(c, r, ns)
	installIntlPluralRules(c, r, ns)
	installIntlSegmenter(c, r, ns)

	c.define("Intl", value.Obj(nsRef))
}

func installIntlLocale(c ctx, r *realm.Realm, ns *object.Object) {
	proto := c.newObject(r.IntrinsicPrototype("Object"))
	protoRef := proto.Self()

	ctorVal, ctorObj := c.nativeConstructor("Locale", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		tag, err := parseLocaleArg(rt, r, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		return newIntlObject(r, "Intl.Locale", &localeData{tag: tag}), nil
	})

	c.definePrototype("Intl.Locale", ctorVal, ctorObj, proto, protoRef)
	c.dataValue(ns, "Locale", ctorVal, true)

	c.accessor(proto, "baseName", func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustIntlData[localeData](rt, this, "Intl.Locale.prototype.baseName")
		if err != nil {
			return value.Value{}, err
		}

		return value.StrFromGo(d.tag.String()), nil
	})

	c.accessor(proto, "language", func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustIntlData[localeData](rt, this, "Intl.Locale.prototype.language")
		if err != nil {
			return value.Value{}, err
		}

		base, _ := d.tag.Base()

		return value.StrFromGo(base.String()), nil
	})

	c.method(proto, "toString", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustIntlData[localeData](rt, this, "Intl.Locale.prototype.toString")
		if err != nil {
			return value.Value{}, err
		}

		return value.StrFromGo(d.tag.String()), nil
	})
}

func installIntlCollator(c ctx, r *realm.Realm, ns *object.Object) {
	proto := c.newObject(r.IntrinsicPrototype("Object"))
	protoRef := proto.Self()

	ctorVal, ctorObj := c.nativeConstructor("Collator", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		tag, err := parseLocaleArg(rt, r, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		opts := []collate.Option{collate.Loose}

		opt := arg(args, 1)
		if obj, ok := opt.AsObject(); ok {
			o, _ := obj.Get().(*object.Object)
			if o != nil {
				sens, serr := o.Get(rt, key("sensitivity"), opt)
				if serr == nil && sens.Kind() == value.KindString && sens.JSString().String() == "variant" {
					opts = []collate.Option{}
				}
			}
		}

		return newIntlObject(r, "Intl.Collator", &collatorData{col: collate.New(tag, opts...), tag: tag}), nil
	})

	c.definePrototype("Intl.Collator", ctorVal, ctorObj, proto, protoRef)
	c.dataValue(ns, "Collator", ctorVal, true)

	c.method(proto, "compare", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustIntlData[collatorData](rt, this, "Intl.Collator.prototype.compare")
		if err != nil {
			return value.Value{}, err
		}

		a, err := toGoString(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		b, err := toGoString(rt, arg(args, 1))
		if err != nil {
			return value.Value{}, err
		}

		return value.Float(float64(d.col.CompareString(a, b))), nil
	})
}

func installIntlNumberFormat(c ctx, r *realm.Realm, ns *object.Object) {
	proto := c.newObject(r.IntrinsicPrototype("Object"))
	protoRef := proto.Self()

	ctorVal, ctorObj := c.nativeConstructor("NumberFormat", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		tag, err := parseLocaleArg(rt, r, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		d := &numberFormatData{tag: tag, style: "decimal", minFrac: 0, maxFrac: 3, useGrouping: true}

		opt := arg(args, 1)
		if obj, ok := opt.AsObject(); ok {
			o, _ := obj.Get().(*object.Object)
			if o != nil {
				if s, serr := o.Get(rt, key("style"), opt); serr == nil && s.Kind() == value.KindString {
					d.style = s.JSString().String()
				}

				if cur, cerr := o.Get(rt, key("currency"), opt); cerr == nil && cur.Kind() == value.KindString {
					d.currency = cur.JSString().String()
				}
			}
		}

		return newIntlObject(r, "Intl.NumberFormat", d), nil
	})

	c.definePrototype("Intl.NumberFormat", ctorVal, ctorObj, proto, protoRef)
	c.dataValue(ns, "NumberFormat", ctorVal, true)

	c.method(proto, "format", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustIntlData[numberFormatData](rt, this, "Intl.NumberFormat.prototype.format")
		if err != nil {
			return value.Value{}, err
		}

		n, err := toFloat64(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		return value.StrFromGo(formatNumber(n, d)), nil
	})
}

// formatNumber renders n per style/grouping; the locale does not affect the
// output (x/text exposes no public decimal-formatting API), so grouping
// always uses "," and the decimal point is always ".".
func formatNumber(n float64, d *numberFormatData) string {
	if d.style == "percent" {
		n *= 100
	}

	s := strconv.FormatFloat(n, 'f', d.maxFrac, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")

	if d.useGrouping {
		s = groupDigits(s)
	}

	switch d.style {
	case "percent":
		s += "%"
	case "currency":
		sym := d.currency
		if sym == "" {
			sym = "USD"
		}

		s = sym + " " + s
	}

	return s
}

func groupDigits(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	var b strings.Builder

	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}

		b.WriteRune(r)
	}

	out := b.String()
	if hasFrac {
		out += "." + fracPart
	}

	if neg {
		out = "-" + out
	}

	return out
}

func installIntlDateTimeFormat(c ctx, r *realm.Realm, ns *object.Object) {
	proto := c.newObject(r.IntrinsicPrototype("Object"))
	protoRef := proto.Self()

	ctorVal, ctorObj := c.nativeConstructor("DateTimeFormat", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		tag, err := parseLocaleArg(rt, r, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		return newIntlObject(r, "Intl.DateTimeFormat", &dateTimeFormatData{tag: tag, dateStyle: "medium", timeStyle: "medium"}), nil
	})

	c.definePrototype("Intl.DateTimeFormat", ctorVal, ctorObj, proto, protoRef)
	c.dataValue(ns, "DateTimeFormat", ctorVal, true)

	c.method(proto, "format", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, _, err := mustIntlData[dateTimeFormatData](rt, this, "Intl.DateTimeFormat.prototype.format")
		if err != nil {
			return value.Value{}, err
		}

		ms, err := toFloat64(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		t := dateToTime(ms)

		return value.StrFromGo(t.Format("Jan 2, 2006, 3:04:05 PM")), nil
	})
}

func installIntlListFormat(c ctx, r *realm.Realm, ns *object.Object) {
	proto := c.newObject(r.IntrinsicPrototype("Object"))
	protoRef := proto.Self()

	ctorVal, ctorObj := c.nativeConstructor("ListFormat", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		tag, err := parseLocaleArg(rt, r, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		d := &listFormatData{tag: tag, style: "long", kind: "conjunction"}

		opt := arg(args, 1)
		if obj, ok := opt.AsObject(); ok {
			o, _ := obj.Get().(*object.Object)
			if o != nil {
				if t, terr := o.Get(rt, key("type"), opt); terr == nil && t.Kind() == value.KindString {
					d.kind = t.JSString().String()
				}
			}
		}

		return newIntlObject(r, "Intl.ListFormat", d), nil
	})

	c.definePrototype("Intl.ListFormat", ctorVal, ctorObj, proto, protoRef)
	c.dataValue(ns, "ListFormat", ctorVal, true)

	c.method(proto, "format", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustIntlData[listFormatData](rt, this, "Intl.ListFormat.prototype.format")
		if err != nil {
			return value.Value{}, err
		}

		items, err := iterableOrArrayLike(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		parts := make([]string, len(items))

		for i, v := range items {
			s, serr := toGoString(rt, v)
			if serr != nil {
				return value.Value{}, serr
			}

			parts[i] = s
		}

		conj := "and"
		if d.kind == "disjunction" {
			conj = "or"
		}

		return value.StrFromGo(joinList(parts, conj)), nil
	})
}

func joinList(parts []string, conj string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	case 2:
		return parts[0] + " " + conj + " " + parts[1]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + ", " + conj + " " + parts[len(parts)-1]
	}
}

func installIntlPluralRules(c ctx, r *realm.Realm, ns *object.Object) {
	proto := c.newObject(r.IntrinsicPrototype("Object"))
	protoRef := proto.Self()

	ctorVal, ctorObj := c.nativeConstructor("PluralRules", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		tag, err := parseLocaleArg(rt, r, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		d := &pluralRulesData{tag: tag, kind: "cardinal"}

		opt := arg(args, 1)
		if obj, ok := opt.AsObject(); ok {
			o, _ := obj.Get().(*object.Object)
			if o != nil {
				if t, terr := o.Get(rt, key("type"), opt); terr == nil && t.Kind() == value.KindString {
					d.kind = t.JSString().String()
				}
			}
		}

		return newIntlObject(r, "Intl.PluralRules", d), nil
	})

	c.definePrototype("Intl.PluralRules", ctorVal, ctorObj, proto, protoRef)
	c.dataValue(ns, "PluralRules", ctorVal, true)

	c.method(proto, "select", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustIntlData[pluralRulesData](rt, this, "Intl.PluralRules.prototype.select")
		if err != nil {
			return value.Value{}, err
		}

		n, err := toFloat64(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		return value.StrFromGo(selectPlural(n, d)), nil
	})
}

// selectPlural implements English's cardinal rule ("one"/"other") and
// ordinal rule ("one"/"two"/"few"/"other") (CLDR's full per-language plural rule tables have no public Go API in
// x/text to ground a general implementation on, so non-English locales fall
// back to this same rule rather than a fabricated one).
func selectPlural(n float64, d *pluralRulesData) string {
	if d.kind == "ordinal" {
		mod100 := int64(n) % 100
		mod10 := int64(n) % 10

		switch {
		case mod10 == 1 && mod100 != 11:
			return "one"
		case mod10 == 2 && mod100 != 12:
			return "two"
		case mod10 == 3 && mod100 != 13:
			return "few"
		default:
			return "other"
		}
	}

	if n == 1 {
		return "one"
	}

	return "other"
}

func installIntlSegmenter(c ctx, r *realm.Realm, ns *object.Object) {
	proto := c.newObject(r.IntrinsicPrototype("Object"))
	protoRef := proto.Self()

	ctorVal, ctorObj := c.nativeConstructor("Segmenter", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		tag, err := parseLocaleArg(rt, r, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		d := &segmenterData{tag: tag, granularity: "grapheme"}

		opt := arg(args, 1)
		if obj, ok := opt.AsObject(); ok {
			o, _ := obj.Get().(*object.Object)
			if o != nil {
				if g, gerr := o.Get(rt, key("granularity"), opt); gerr == nil && g.Kind() == value.KindString {
					d.granularity = g.JSString().String()
				}
			}
		}

		return newIntlObject(r, "Intl.Segmenter", d), nil
	})

	c.definePrototype("Intl.Segmenter", ctorVal, ctorObj, proto, protoRef)
	c.dataValue(ns, "Segmenter", ctorVal, true)

	c.method(proto, "segment", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustIntlData[segmenterData](rt, this, "Intl.Segmenter.prototype.segment")
		if err != nil {
			return value.Value{}, err
		}

		s, err := toGoString(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		segs := segmentString(s, d.granularity)

		vals := make([]value.Value, len(segs))
		for i, seg := range segs {
			vals[i] = value.StrFromGo(seg)
		}

		return c.newArrayOf(vals), nil
	})
}

// segmentString splits per granularity: "word" on runs of space, tab and
// newline (other whitespace is not a separator),
// "sentence" on ./!/? terminators, "grapheme" (the default) per rune — a
// simplification of full grapheme-cluster boundary rules, which (like
// CLDR plurals) x/text doesn't expose publicly; codepoint-granularity
// splitting is correct for the overwhelming majority of text that doesn't
// combine marks with a base character.
func segmentString(s, granularity string) []string {
	switch granularity {
	case "word":
		return strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' })
	case "sentence":
		var out []string

		start := 0

		for i, r := range s {
			if r == '.' || r == '!' || r == '?' {
				out = append(out, s[start:i+1])
				start = i + 1
			}
		}

		if start < len(s) {
			out = append(out, s[start:])
		}

		return out
	default:
		out := make([]string, 0, len(s))

		for _, r := range s {
			out = append(out, string(r))
		}

		return out
	}
}

