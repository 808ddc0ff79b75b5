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
	"time"

	"github.com/ecmaforge/ecmaforge/pkg/heap"
	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/realm"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// Temporal's five plain/exact value types are each grounded on dateData's
// own idiom in date.go (a single internal-slot payload struct backing a
// KindXxx-tagged object, standard-library time.Time for all calendar
// arithmetic) generalized to the proposal's calendar-aware, non-legacy
// model. Temporal.ZonedDateTime is deliberately not constructible: it is
// the one Temporal type whose correct semantics depend on an IANA time
// zone database lookup with DST-transition disambiguation rules the
// standard library's time.LoadLocation only partially covers, and no pack
// example carries a tzdata-aware calendar library to ground a conformant
// implementation on.
type instantData struct{ nanos int64 } // since epoch

type plainDateData struct{ year, month, day int }

type plainTimeData struct{ hour, minute, second, ms, us, ns int }

type plainDateTimeData struct {
	year, month, day                      int
	hour, minute, second, ms, us, ns       int
}

type durationData struct {
	years, months, weeks, days                   int64
	hours, minutes, seconds, ms, us, ns           int64
}

func mustTemporalData[T any](rt object.Runtime, this value.Value, what string) (*object.Object, *T, error) {
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

func newTemporalObject(r *realm.Realm, kind object.Kind, protoName string, data any) value.Value {
	obj := object.New(r.ShapeRoot(), protoName, kind, r.IntrinsicPrototype(protoName))
	obj.SetData(data)
	ref := heap.NewGc[value.HeapObject](r.Heap(), obj, nil)
	obj.SetSelf(ref)

	return value.Obj(ref)
}

// installTemporal installs the `Temporal` namespace object (§Temporal of the
// stage-3 proposal, shipped here as a built-in the way V8/SpiderMonkey now
// do): Instant, PlainDate, PlainTime, PlainDateTime, and Duration, each a
// thin calendar-aware wrapper over time.Time/time.Duration arithmetic.
// ZonedDateTime is exposed only as a constructor that throws, per the
// grounding note on the data types above.
func installTemporal(r *realm.Realm) {
	c := newCtx(r)

	ns := c.newObject(r.IntrinsicPrototype("Object"))
	nsRef := ns.Self()

	installTemporalInstant(c, r, ns)
	installTemporalPlainDate(c, r, ns)
	installTemporalPlainTime(c, r, ns)
	installTemporalPlainDateTime(c, r, ns)
	installTemporalDuration(c, r, ns)
	installTemporalZonedDateTimeStub(c, r, ns)

	c.define("Temporal", value.Obj(nsRef))
}

func installTemporalInstant(c ctx, r *realm.Realm, ns *object.Object) {
	proto := c.newObject(r.IntrinsicPrototype("Object"))
	protoRef := proto.Self()

	ctorVal, ctorObj := c.nativeConstructor("Temporal.Instant", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		epochNs, err := toInteger(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		return newTemporalObject(r, object.KindTemporalInstant, "Temporal.Instant", &instantData{nanos: epochNs}), nil
	})

	c.definePrototype("Temporal.Instant", ctorVal, ctorObj, proto, protoRef)
	c.dataValue(ns, "Instant", ctorVal, true)

	c.method(ctorObj, "fromEpochMilliseconds", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		ms, err := toInteger(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		return newTemporalObject(r, object.KindTemporalInstant, "Temporal.Instant", &instantData{nanos: ms * 1_000_000}), nil
	})

	c.method(proto, "epochMilliseconds", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustTemporalData[instantData](rt, this, "Temporal.Instant.prototype.epochMilliseconds")
		if err != nil {
			return value.Value{}, err
		}

		return value.Float(float64(d.nanos / 1_000_000)), nil
	})

	c.method(proto, "epochNanoseconds", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustTemporalData[instantData](rt, this, "Temporal.Instant.prototype.epochNanoseconds")
		if err != nil {
			return value.Value{}, err
		}

		return value.Float(float64(d.nanos)), nil
	})

	c.method(proto, "add", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustTemporalData[instantData](rt, this, "Temporal.Instant.prototype.add")
		if err != nil {
			return value.Value{}, err
		}

		dur, err := durationArg(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		return newTemporalObject(r, object.KindTemporalInstant, "Temporal.Instant", &instantData{nanos: d.nanos + durationNanos(dur)}), nil
	})

	c.method(proto, "subtract", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustTemporalData[instantData](rt, this, "Temporal.Instant.prototype.subtract")
		if err != nil {
			return value.Value{}, err
		}

		dur, err := durationArg(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		return newTemporalObject(r, object.KindTemporalInstant, "Temporal.Instant", &instantData{nanos: d.nanos - durationNanos(dur)}), nil
	})

	c.method(proto, "toString", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustTemporalData[instantData](rt, this, "Temporal.Instant.prototype.toString")
		if err != nil {
			return value.Value{}, err
		}

		t := time.Unix(0, d.nanos).UTC()

		return value.StrFromGo(t.Format("2006-01-02T15:04:05.000000000Z")), nil
	})
}

func installTemporalPlainDate(c ctx, r *realm.Realm, ns *object.Object) {
	proto := c.newObject(r.IntrinsicPrototype("Object"))
	protoRef := proto.Self()

	ctorVal, ctorObj := c.nativeConstructor("Temporal.PlainDate", 3, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		y, err := toInteger(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		mo, err := toInteger(rt, arg(args, 1))
		if err != nil {
			return value.Value{}, err
		}

		day, err := toInteger(rt, arg(args, 2))
		if err != nil {
			return value.Value{}, err
		}

		if mo < 1 || mo > 12 || day < 1 || day > 31 {
			return value.Value{}, throwRange(rt, "invalid Temporal.PlainDate fields")
		}

		return newTemporalObject(r, object.KindTemporalPlainDate, "Temporal.PlainDate", &plainDateData{year: int(y), month: int(mo), day: int(day)}), nil
	})

	c.definePrototype("Temporal.PlainDate", ctorVal, ctorObj, proto, protoRef)
	c.dataValue(ns, "PlainDate", ctorVal, true)

	field := func(name string, pick func(d *plainDateData) int) {
		c.accessor(proto, name, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
			_, d, err := mustTemporalData[plainDateData](rt, this, "Temporal.PlainDate.prototype."+name)
			if err != nil {
				return value.Value{}, err
			}

			return value.Float(float64(pick(d))), nil
		})
	}

	field("year", func(d *plainDateData) int { return d.year })
	field("month", func(d *plainDateData) int { return d.month })
	field("day", func(d *plainDateData) int { return d.day })
	field("dayOfWeek", func(d *plainDateData) int {
		wd := time.Date(d.year, time.Month(d.month), d.day, 0, 0, 0, 0, time.UTC).Weekday()
		if wd == time.Sunday {
			return 7
		}

		return int(wd)
	})
	field("daysInMonth", func(d *plainDateData) int {
		return time.Date(d.year, time.Month(d.month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	})
	field("daysInYear", func(d *plainDateData) int {
		if (d.year%4 == 0 && d.year%100 != 0) || d.year%400 == 0 {
			return 366
		}

		return 365
	})

	c.method(proto, "add", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustTemporalData[plainDateData](rt, this, "Temporal.PlainDate.prototype.add")
		if err != nil {
			return value.Value{}, err
		}

		dur, err := durationArg(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		t := time.Date(d.year, time.Month(d.month), d.day, 0, 0, 0, 0, time.UTC)
		t = t.AddDate(int(dur.years), int(dur.months), int(dur.weeks)*7+int(dur.days))

		return newTemporalObject(r, object.KindTemporalPlainDate, "Temporal.PlainDate", &plainDateData{year: t.Year(), month: int(t.Month()), day: t.Day()}), nil
	})

	c.method(proto, "subtract", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustTemporalData[plainDateData](rt, this, "Temporal.PlainDate.prototype.subtract")
		if err != nil {
			return value.Value{}, err
		}

		dur, err := durationArg(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		t := time.Date(d.year, time.Month(d.month), d.day, 0, 0, 0, 0, time.UTC)
		t = t.AddDate(-int(dur.years), -int(dur.months), -(int(dur.weeks)*7 + int(dur.days)))

		return newTemporalObject(r, object.KindTemporalPlainDate, "Temporal.PlainDate", &plainDateData{year: t.Year(), month: int(t.Month()), day: t.Day()}), nil
	})

	c.method(proto, "toString", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustTemporalData[plainDateData](rt, this, "Temporal.PlainDate.prototype.toString")
		if err != nil {
			return value.Value{}, err
		}

		return value.StrFromGo(fmt.Sprintf("%04d-%02d-%02d", d.year, d.month, d.day)), nil
	})
}

func installTemporalPlainTime(c ctx, r *realm.Realm, ns *object.Object) {
	proto := c.newObject(r.IntrinsicPrototype("Object"))
	protoRef := proto.Self()

	ctorVal, ctorObj := c.nativeConstructor("Temporal.PlainTime", 6, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		get := func(i int) (int, error) {
			n, err := toInteger(rt, arg(args, i))
			return int(n), err
		}

		h, err := get(0)
		if err != nil {
			return value.Value{}, err
		}

		mi, err := get(1)
		if err != nil {
			return value.Value{}, err
		}

		s, err := get(2)
		if err != nil {
			return value.Value{}, err
		}

		ms, err := get(3)
		if err != nil {
			return value.Value{}, err
		}

		us, err := get(4)
		if err != nil {
			return value.Value{}, err
		}

		nsv, err := get(5)
		if err != nil {
			return value.Value{}, err
		}

		if h < 0 || h > 23 || mi < 0 || mi > 59 || s < 0 || s > 59 {
			return value.Value{}, throwRange(rt, "invalid Temporal.PlainTime fields")
		}

		return newTemporalObject(r, object.KindTemporalPlainTime, "Temporal.PlainTime", &plainTimeData{hour: h, minute: mi, second: s, ms: ms, us: us, ns: nsv}), nil
	})

	c.definePrototype("Temporal.PlainTime", ctorVal, ctorObj, proto, protoRef)
	c.dataValue(ns, "PlainTime", ctorVal, true)

	field := func(name string, pick func(d *plainTimeData) int) {
		c.accessor(proto, name, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
			_, d, err := mustTemporalData[plainTimeData](rt, this, "Temporal.PlainTime.prototype."+name)
			if err != nil {
				return value.Value{}, err
			}

			return value.Float(float64(pick(d))), nil
		})
	}

	field("hour", func(d *plainTimeData) int { return d.hour })
	field("minute", func(d *plainTimeData) int { return d.minute })
	field("second", func(d *plainTimeData) int { return d.second })
	field("millisecond", func(d *plainTimeData) int { return d.ms })
	field("microsecond", func(d *plainTimeData) int { return d.us })
	field("nanosecond", func(d *plainTimeData) int { return d.ns })

	c.method(proto, "toString", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustTemporalData[plainTimeData](rt, this, "Temporal.PlainTime.prototype.toString")
		if err != nil {
			return value.Value{}, err
		}

		return value.StrFromGo(fmt.Sprintf("%02d:%02d:%02d", d.hour, d.minute, d.second)), nil
	})
}

func installTemporalPlainDateTime(c ctx, r *realm.Realm, ns *object.Object) {
	proto := c.newObject(r.IntrinsicPrototype("Object"))
	protoRef := proto.Self()

	ctorVal, ctorObj := c.nativeConstructor("Temporal.PlainDateTime", 7, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		get := func(i int) (int, error) {
			n, err := toInteger(rt, arg(args, i))
			return int(n), err
		}

		vals := make([]int, 7)

		for i := range vals {
			v, err := get(i)
			if err != nil {
				return value.Value{}, err
			}

			vals[i] = v
		}

		d := &plainDateTimeData{
			year: vals[0], month: vals[1], day: vals[2],
			hour: vals[3], minute: vals[4], second: vals[5], ms: vals[6],
		}

		return newTemporalObject(r, object.KindTemporalPlainDateTime, "Temporal.PlainDateTime", d), nil
	})

	c.definePrototype("Temporal.PlainDateTime", ctorVal, ctorObj, proto, protoRef)
	c.dataValue(ns, "PlainDateTime", ctorVal, true)

	field := func(name string, pick func(d *plainDateTimeData) int) {
		c.accessor(proto, name, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
			_, d, err := mustTemporalData[plainDateTimeData](rt, this, "Temporal.PlainDateTime.prototype."+name)
			if err != nil {
				return value.Value{}, err
			}

			return value.Float(float64(pick(d))), nil
		})
	}

	field("year", func(d *plainDateTimeData) int { return d.year })
	field("month", func(d *plainDateTimeData) int { return d.month })
	field("day", func(d *plainDateTimeData) int { return d.day })
	field("hour", func(d *plainDateTimeData) int { return d.hour })
	field("minute", func(d *plainDateTimeData) int { return d.minute })
	field("second", func(d *plainDateTimeData) int { return d.second })
	field("millisecond", func(d *plainDateTimeData) int { return d.ms })

	c.method(proto, "toString", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustTemporalData[plainDateTimeData](rt, this, "Temporal.PlainDateTime.prototype.toString")
		if err != nil {
			return value.Value{}, err
		}

		return value.StrFromGo(fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d.%03d", d.year, d.month, d.day, d.hour, d.minute, d.second, d.ms)), nil
	})

	c.method(proto, "toPlainDate", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustTemporalData[plainDateTimeData](rt, this, "Temporal.PlainDateTime.prototype.toPlainDate")
		if err != nil {
			return value.Value{}, err
		}

		return newTemporalObject(r, object.KindTemporalPlainDate, "Temporal.PlainDate", &plainDateData{year: d.year, month: d.month, day: d.day}), nil
	})

	c.method(proto, "toPlainTime", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustTemporalData[plainDateTimeData](rt, this, "Temporal.PlainDateTime.prototype.toPlainTime")
		if err != nil {
			return value.Value{}, err
		}

		return newTemporalObject(r, object.KindTemporalPlainTime, "Temporal.PlainTime", &plainTimeData{hour: d.hour, minute: d.minute, second: d.second, ms: d.ms}), nil
	})
}

func installTemporalDuration(c ctx, r *realm.Realm, ns *object.Object) {
	proto := c.newObject(r.IntrinsicPrototype("Object"))
	protoRef := proto.Self()

	ctorVal, ctorObj := c.nativeConstructor("Temporal.Duration", 10, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		get := func(i int) (int64, error) { return toInteger(rt, arg(args, i)) }

		vals := make([]int64, 10)

		for i := range vals {
			v, err := get(i)
			if err != nil {
				return value.Value{}, err
			}

			vals[i] = v
		}

		d := &durationData{
			years: vals[0], months: vals[1], weeks: vals[2], days: vals[3],
			hours: vals[4], minutes: vals[5], seconds: vals[6],
			ms: vals[7], us: vals[8], ns: vals[9],
		}

		return newTemporalObject(r, object.KindTemporalDuration, "Temporal.Duration", d), nil
	})

	c.definePrototype("Temporal.Duration", ctorVal, ctorObj, proto, protoRef)
	c.dataValue(ns, "Duration", ctorVal, true)

	field := func(name string, pick func(d *durationData) int64) {
		c.accessor(proto, name, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
			_, d, err := mustTemporalData[durationData](rt, this, "Temporal.Duration.prototype."+name)
			if err != nil {
				return value.Value{}, err
			}

			return value.Float(float64(pick(d))), nil
		})
	}

	field("years", func(d *durationData) int64 { return d.years })
	field("months", func(d *durationData) int64 { return d.months })
	field("weeks", func(d *durationData) int64 { return d.weeks })
	field("days", func(d *durationData) int64 { return d.days })
	field("hours", func(d *durationData) int64 { return d.hours })
	field("minutes", func(d *durationData) int64 { return d.minutes })
	field("seconds", func(d *durationData) int64 { return d.seconds })
	field("milliseconds", func(d *durationData) int64 { return d.ms })
	field("microseconds", func(d *durationData) int64 { return d.us })
	field("nanoseconds", func(d *durationData) int64 { return d.ns })

	c.method(proto, "total", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustTemporalData[durationData](rt, this, "Temporal.Duration.prototype.total")
		if err != nil {
			return value.Value{}, err
		}

		return value.Float(float64(durationNanos(d)) / 1e9), nil
	})

	c.method(proto, "toString", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustTemporalData[durationData](rt, this, "Temporal.Duration.prototype.toString")
		if err != nil {
			return value.Value{}, err
		}

		return value.StrFromGo(fmt.Sprintf("P%dY%dM%dDT%dH%dM%dS", d.years, d.months, d.weeks*7+d.days, d.hours, d.minutes, d.seconds)), nil
	})
}

// installTemporalZonedDateTimeStub registers the constructor name without a
// working implementation, throwing on any construction attempt — scripts
// that feature-test `typeof Temporal.ZonedDateTime === "function"` see the
// expected shape, but actually building one fails loudly rather than
// silently misbehaving with wrong offsets.
func installTemporalZonedDateTimeStub(c ctx, r *realm.Realm, ns *object.Object) {
	ctorVal, _ := c.nativeConstructor("Temporal.ZonedDateTime", 3, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return value.Value{}, throwType(rt, "Temporal.ZonedDateTime is not supported in this engine")
	})

	c.dataValue(ns, "ZonedDateTime", ctorVal, true)
}

// durationArg coerces a Temporal.Duration-like argument's internal slots;
// accepts only an actual Temporal.Duration object (the proposal also allows
// a duration-like plain object, elided here since no pack example shows a
// field-by-field "propertybag-with-defaults" coercion idiom to ground it on).
func durationArg(rt object.Runtime, v value.Value) (*durationData, error) {
	_, d, err := mustTemporalData[durationData](rt, v, "Temporal duration argument")
	if err != nil {
		return nil, err
	}

	return d, nil
}

func durationNanos(d *durationData) int64 {
	days := d.years*365 + d.months*30 + d.weeks*7 + d.days
	return days*86400*1_000_000_000 + d.hours*3600*1_000_000_000 + d.minutes*60*1_000_000_000 + d.seconds*1_000_000_000 + d.ms*1_000_000 + d.us*1000 + d.ns
}
