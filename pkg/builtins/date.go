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
	"time"

	"github.com/ecmaforge/ecmaforge/pkg/heap"
	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/realm"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// dateData holds [[DateValue]] (§21.4.4): a single float64 count of
// milliseconds since the epoch, NaN for an Invalid Date. Standard-library
// `time` is the only reasonable grounding here — no pack example carries a
// calendar/date-arithmetic library, and §21.4's algorithms (MakeTime,
// MakeDay, TimeClip, the exact millisecond epoch arithmetic) are specified
// precisely enough that a general calendar library would fight the spec
// more than help.
type dateData struct {
	ms float64
}

const msPerDay = 86400000

// timeClip implements TimeClip (§21.4.1.34): out-of-range values become NaN.
func timeClip(ms float64) float64 {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || math.Abs(ms) > 8.64e15 {
		return math.NaN()
	}

	return math.Trunc(ms)
}

func dateToTime(ms float64) time.Time {
	return time.UnixMilli(int64(ms)).UTC()
}

func timeToMs(t time.Time) float64 {
	return float64(t.UnixMilli())
}

func mustDateData(rt object.Runtime, this value.Value, what string) (*object.Object, *dateData, error) {
	h, ok := this.AsObject()
	if !ok {
		return nil, nil, throwType(rt, "%s called on a non-object", what)
	}

	o, ok := h.Get().(*object.Object)
	if !ok {
		return nil, nil, throwType(rt, "%s called on a non-object", what)
	}

	d, ok := o.Data().(*dateData)
	if !ok {
		return nil, nil, throwType(rt, "%s called on incompatible receiver", what)
	}

	return o, d, nil
}

// makeDate implements MakeDate/MakeDay/MakeTime combined (§21.4.1.12/.13/.14)
// for the multi-argument constructor/UTC form: year, month, ... are each
// ToNumber-coerced, non-finite propagates to NaN, and month/day overflow
// carries into the adjacent field exactly like Go's time.Date normalization.
func makeDate(rt object.Runtime, args []value.Value, utc bool) (float64, error) {
	get := func(i int, def float64) (float64, error) {
		if i >= len(args) {
			return def, nil
		}

		return toFloat64(rt, args[i])
	}

	year, err := get(0, 0)
	if err != nil {
		return 0, err
	}

	month, err := get(1, 0)
	if err != nil {
		return 0, err
	}

	day, err := get(2, 1)
	if err != nil {
		return 0, err
	}

	hour, err := get(3, 0)
	if err != nil {
		return 0, err
	}

	minute, err := get(4, 0)
	if err != nil {
		return 0, err
	}

	sec, err := get(5, 0)
	if err != nil {
		return 0, err
	}

	msec, err := get(6, 0)
	if err != nil {
		return 0, err
	}

	for _, v := range []float64{year, month, day, hour, minute, sec, msec} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return math.NaN(), nil
		}
	}

	y := int(year)
	if year >= 0 && year <= 99 {
		y += 1900
	}

	loc := time.Local
	if utc {
		loc = time.UTC
	}

	t := time.Date(y, time.Month(1)+time.Month(int(month)), int(day), int(hour), int(minute), int(sec), int(msec)*1e6, loc)

	return timeClip(timeToMs(t.UTC())), nil
}

func parseDate(s string) float64 {
	layouts := []string{
		time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.000Z", "2006-01-02T15:04:05",
		"2006-01-02", "2006-01-02T15:04", time.RFC1123, time.RFC1123Z, time.ANSIC, time.UnixDate,
	}

	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return timeClip(timeToMs(t.UTC()))
		}
	}

	return math.NaN()
}

func installDate(r *realm.Realm) {
	c := newCtx(r)

	proto := c.newObject(r.IntrinsicPrototype("Object"))
	protoRef := proto.Self()

	ctorVal, ctorObj := c.nativeConstructor("Date", 7, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		var ms float64

		switch len(args) {
		case 0:
			ms = timeClip(timeToMs(time.Now()))
		case 1:
			v, err := toPrimitiveValue(rt, args[0])
			if err != nil {
				return value.Value{}, err
			}

			if v.Kind() == value.KindString {
				ms = parseDate(v.JSString().String())
			} else {
				n, err := toFloat64(rt, v)
				if err != nil {
					return value.Value{}, err
				}

				ms = timeClip(n)
			}
		default:
			n, err := makeDate(rt, args, false)
			if err != nil {
				return value.Value{}, err
			}

			ms = n
		}

		obj := object.New(r.ShapeRoot(), "Date", object.KindDate, r.IntrinsicPrototype("Date"))
		obj.SetData(&dateData{ms: ms})
		ref := heap.NewGc[value.HeapObject](r.Heap(), obj, nil)
		obj.SetSelf(ref)

		return value.Obj(ref), nil
	})

	c.definePrototype("Date", ctorVal, ctorObj, proto, protoRef)
	c.define("Date", ctorVal)

	c.method(ctorObj, "now", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return value.Float(timeToMs(time.Now())), nil
	})

	c.method(ctorObj, "parse", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		s, err := toGoString(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		return value.Float(parseDate(s)), nil
	})

	c.method(ctorObj, "UTC", 7, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		ms, err := makeDate(rt, args, true)
		if err != nil {
			return value.Value{}, err
		}

		return value.Float(ms), nil
	})

	get := func(name string, pick func(t time.Time) int) {
		c.method(proto, name, 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
			_, d, err := mustDateData(rt, this, "Date.prototype."+name)
			if err != nil {
				return value.Value{}, err
			}

			if math.IsNaN(d.ms) {
				return value.Float(math.NaN()), nil
			}

			local := dateToTime(d.ms).In(time.Local)

			return value.Int(int32(pick(local))), nil
		})
	}

	getUTC := func(name string, pick func(t time.Time) int) {
		c.method(proto, name, 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
			_, d, err := mustDateData(rt, this, "Date.prototype."+name)
			if err != nil {
				return value.Value{}, err
			}

			if math.IsNaN(d.ms) {
				return value.Float(math.NaN()), nil
			}

			return value.Int(int32(pick(dateToTime(d.ms)))), nil
		})
	}

	get("getFullYear", func(t time.Time) int { return t.Year() })
	get("getMonth", func(t time.Time) int { return int(t.Month()) - 1 })
	get("getDate", func(t time.Time) int { return t.Day() })
	get("getDay", func(t time.Time) int { return int(t.Weekday()) })
	get("getHours", func(t time.Time) int { return t.Hour() })
	get("getMinutes", func(t time.Time) int { return t.Minute() })
	get("getSeconds", func(t time.Time) int { return t.Second() })
	get("getMilliseconds", func(t time.Time) int { return t.Nanosecond() / 1e6 })

	getUTC("getUTCFullYear", func(t time.Time) int { return t.Year() })
	getUTC("getUTCMonth", func(t time.Time) int { return int(t.Month()) - 1 })
	getUTC("getUTCDate", func(t time.Time) int { return t.Day() })
	getUTC("getUTCDay", func(t time.Time) int { return int(t.Weekday()) })
	getUTC("getUTCHours", func(t time.Time) int { return t.Hour() })
	getUTC("getUTCMinutes", func(t time.Time) int { return t.Minute() })
	getUTC("getUTCSeconds", func(t time.Time) int { return t.Second() })
	getUTC("getUTCMilliseconds", func(t time.Time) int { return t.Nanosecond() / 1e6 })

	c.method(proto, "getTime", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustDateData(rt, this, "Date.prototype.getTime")
		if err != nil {
			return value.Value{}, err
		}

		return value.Float(d.ms), nil
	})

	c.method(proto, "valueOf", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustDateData(rt, this, "Date.prototype.valueOf")
		if err != nil {
			return value.Value{}, err
		}

		return value.Float(d.ms), nil
	})

	c.method(proto, "getTimezoneOffset", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustDateData(rt, this, "Date.prototype.getTimezoneOffset")
		if err != nil {
			return value.Value{}, err
		}

		if math.IsNaN(d.ms) {
			return value.Float(math.NaN()), nil
		}

		_, offset := dateToTime(d.ms).In(time.Local).Zone()

		return value.Int(int32(-offset / 60)), nil
	})

	c.method(proto, "setTime", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustDateData(rt, this, "Date.prototype.setTime")
		if err != nil {
			return value.Value{}, err
		}

		n, err := toFloat64(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		d.ms = timeClip(n)

		return value.Float(d.ms), nil
	})

	// setField installs a Date.prototype setter: apply receives the current
	// broken-down time, the explicitly-passed arguments converted to int
	// (NaN short-circuits to an Invalid Date before apply ever runs), and
	// provided (how many of parts are actually caller-supplied, vs. a
	// trailing field that must keep its current value) — a caller passing
	// fewer than nparts arguments (e.g. `setMonth(5)` with no day) leaves
	// every field past provided untouched, per §21.4.4.20 and siblings.
	setField := func(name string, utc bool, apply func(t time.Time, parts []int, provided int) time.Time, nparts int) {
		c.method(proto, name, nparts, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
			_, d, err := mustDateData(rt, this, "Date.prototype."+name)
			if err != nil {
				return value.Value{}, err
			}

			base := dateToTime(d.ms)
			if !utc {
				base = base.In(time.Local)
			}

			provided := len(args)
			if provided > nparts {
				provided = nparts
			}

			parts := make([]int, nparts)

			for i := 0; i < provided; i++ {
				n, err := toFloat64(rt, args[i])
				if err != nil {
					return value.Value{}, err
				}

				if math.IsNaN(n) {
					d.ms = math.NaN()
					return value.Float(d.ms), nil
				}

				parts[i] = int(n)
			}

			result := apply(base, parts, provided)
			d.ms = timeClip(timeToMs(result.UTC()))

			return value.Float(d.ms), nil
		})
	}

	setField("setFullYear", false, func(t time.Time, p []int, n int) time.Time {
		month, day := t.Month(), t.Day()
		if n > 1 {
			month = time.Month(p[1] + 1)
		}

		if n > 2 {
			day = p[2]
		}

		return time.Date(p[0], month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	}, 3)

	setField("setMonth", false, func(t time.Time, p []int, n int) time.Time {
		day := t.Day()
		if n > 1 {
			day = p[1]
		}

		return time.Date(t.Year(), time.Month(p[0]+1), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	}, 2)

	setField("setDate", false, func(t time.Time, p []int, n int) time.Time {
		return time.Date(t.Year(), t.Month(), p[0], t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	}, 1)

	setField("setHours", false, func(t time.Time, p []int, n int) time.Time {
		minute, sec, ms := t.Minute(), t.Second(), t.Nanosecond()/1e6
		if n > 1 {
			minute = p[1]
		}

		if n > 2 {
			sec = p[2]
		}

		if n > 3 {
			ms = p[3]
		}

		return time.Date(t.Year(), t.Month(), t.Day(), p[0], minute, sec, ms*1e6, t.Location())
	}, 4)

	setField("setMinutes", false, func(t time.Time, p []int, n int) time.Time {
		sec, ms := t.Second(), t.Nanosecond()/1e6
		if n > 1 {
			sec = p[1]
		}

		if n > 2 {
			ms = p[2]
		}

		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), p[0], sec, ms*1e6, t.Location())
	}, 3)

	setField("setSeconds", false, func(t time.Time, p []int, n int) time.Time {
		ms := t.Nanosecond() / 1e6
		if n > 1 {
			ms = p[1]
		}

		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), p[0], ms*1e6, t.Location())
	}, 2)

	setField("setMilliseconds", false, func(t time.Time, p []int, n int) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), p[0]*1e6, t.Location())
	}, 1)

	setField("setUTCFullYear", true, func(t time.Time, p []int, n int) time.Time {
		month, day := t.Month(), t.Day()
		if n > 1 {
			month = time.Month(p[1] + 1)
		}

		if n > 2 {
			day = p[2]
		}

		return time.Date(p[0], month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	}, 3)

	setField("setUTCMonth", true, func(t time.Time, p []int, n int) time.Time {
		day := t.Day()
		if n > 1 {
			day = p[1]
		}

		return time.Date(t.Year(), time.Month(p[0]+1), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	}, 2)

	setField("setUTCDate", true, func(t time.Time, p []int, n int) time.Time {
		return time.Date(t.Year(), t.Month(), p[0], t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	}, 1)

	c.method(proto, "toISOString", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustDateData(rt, this, "Date.prototype.toISOString")
		if err != nil {
			return value.Value{}, err
		}

		if math.IsNaN(d.ms) {
			return value.Value{}, throwRange(rt, "invalid time value")
		}

		return value.StrFromGo(dateToTime(d.ms).Format("2006-01-02T15:04:05.000Z")), nil
	})

	c.method(proto, "toJSON", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustDateData(rt, this, "Date.prototype.toJSON")
		if err != nil {
			return value.Value{}, err
		}

		if math.IsNaN(d.ms) || math.IsInf(d.ms, 0) {
			return value.Null(), nil
		}

		return value.StrFromGo(dateToTime(d.ms).Format("2006-01-02T15:04:05.000Z")), nil
	})

	c.method(proto, "toUTCString", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustDateData(rt, this, "Date.prototype.toUTCString")
		if err != nil {
			return value.Value{}, err
		}

		if math.IsNaN(d.ms) {
			return value.StrFromGo("Invalid Date"), nil
		}

		return value.StrFromGo(dateToTime(d.ms).Format("Mon, 02 Jan 2006 15:04:05 GMT")), nil
	})

	toStringImpl := func(name string, layout string, utc bool) {
		c.method(proto, name, 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
			_, d, err := mustDateData(rt, this, "Date.prototype."+name)
			if err != nil {
				return value.Value{}, err
			}

			if math.IsNaN(d.ms) {
				return value.StrFromGo("Invalid Date"), nil
			}

			t := dateToTime(d.ms)
			if !utc {
				t = t.In(time.Local)
			}

			return value.StrFromGo(t.Format(layout)), nil
		})
	}

	toStringImpl("toString", "Mon Jan 02 2006 15:04:05 GMT-0700 (MST)", false)
	toStringImpl("toDateString", "Mon Jan 02 2006", false)
	toStringImpl("toTimeString", "15:04:05 GMT-0700 (MST)", false)
	toStringImpl("toLocaleDateString", "1/2/2006", false)
	toStringImpl("toLocaleTimeString", "3:04:05 PM", false)
	toStringImpl("toLocaleString", "1/2/2006, 3:04:05 PM", false)

	c.symbolMethod(proto, value.SymbolToPrimitive, "[Symbol.toPrimitive]", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		hint, err := toGoString(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		_, d, err := mustDateData(rt, this, "Date.prototype[Symbol.toPrimitive]")
		if err != nil {
			return value.Value{}, err
		}

		if hint == "number" {
			return value.Float(d.ms), nil
		}

		if math.IsNaN(d.ms) {
			return value.StrFromGo("Invalid Date"), nil
		}

		return value.StrFromGo(fmt.Sprintf("%s %s %s",
			dateToTime(d.ms).In(time.Local).Format("Mon Jan 02 2006"),
			dateToTime(d.ms).In(time.Local).Format("15:04:05"),
			dateToTime(d.ms).In(time.Local).Format("GMT-0700 (MST)"))), nil
	})
}

// toPrimitiveValue is a thin ToPrimitive wrapper (no hint) for Date's
// single-argument constructor overload resolution (§21.4.3.2 step 3.b:
// distinguishing a Date-like string argument from a numeric timestamp).
func toPrimitiveValue(rt object.Runtime, v value.Value) (value.Value, error) {
	return coercer{rt}.ToPrimitive(v, "")
}
