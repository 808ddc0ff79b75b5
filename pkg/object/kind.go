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

// Package object implements the value and object model of §3.2 and the
// property machinery of §4.7: a single concrete Object type tagged by Kind
// (so that "polymorphic built-in methods dispatch on the value's object
// kind, not on a vtable", per §9), backed by a pkg/shape shape and a
// positional slot vector.
package object

// Kind tags which object variant an Object is (§3.2).
type Kind uint8

// Object kinds, per §3.2.
const (
	KindOrdinary Kind = iota
	KindArray
	KindStringWrapper
	KindFunction
	KindBoundFunction
	KindProxy
	KindArguments
	KindTypedArray
	KindArrayBuffer
	KindDataView
	KindMap
	KindSet
	KindWeakMap
	KindWeakSet
	KindWeakRef
	KindFinalizationRegistry
	KindDate
	KindRegExp
	KindPromise
	KindGenerator
	KindAsyncGenerator
	KindIterator
	KindIteratorHelper
	KindError
	KindModuleNamespace
	KindHost
	KindTemporalInstant
	KindTemporalPlainDate
	KindTemporalPlainTime
	KindTemporalPlainDateTime
	KindTemporalDuration
)

// String returns the internal [[Class]]-ish name used for diagnostics and
// as the Object.prototype.toString fallback tag.
func (k Kind) String() string {
	switch k {
	case KindOrdinary:
		return "Object"
	case KindArray:
		return "Array"
	case KindStringWrapper:
		return "String"
	case KindFunction, KindBoundFunction:
		return "Function"
	case KindProxy:
		return "Proxy"
	case KindArguments:
		return "Arguments"
	case KindTypedArray:
		return "TypedArray"
	case KindArrayBuffer:
		return "ArrayBuffer"
	case KindDataView:
		return "DataView"
	case KindMap:
		return "Map"
	case KindSet:
		return "Set"
	case KindWeakMap:
		return "WeakMap"
	case KindWeakSet:
		return "WeakSet"
	case KindWeakRef:
		return "WeakRef"
	case KindFinalizationRegistry:
		return "FinalizationRegistry"
	case KindDate:
		return "Date"
	case KindRegExp:
		return "RegExp"
	case KindPromise:
		return "Promise"
	case KindGenerator:
		return "Generator"
	case KindAsyncGenerator:
		return "AsyncGenerator"
	case KindIterator:
		return "Iterator"
	case KindIteratorHelper:
		return "Iterator Helper"
	case KindError:
		return "Error"
	case KindModuleNamespace:
		return "Module"
	case KindTemporalInstant:
		return "Temporal.Instant"
	case KindTemporalPlainDate:
		return "Temporal.PlainDate"
	case KindTemporalPlainTime:
		return "Temporal.PlainTime"
	case KindTemporalPlainDateTime:
		return "Temporal.PlainDateTime"
	case KindTemporalDuration:
		return "Temporal.Duration"
	default:
		return "Object"
	}
}
