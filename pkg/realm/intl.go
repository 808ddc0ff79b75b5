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
package realm

import "golang.org/x/text/language"

// IntlProviders holds the realm-local state ECMA-402's Intl namespace needs
// that isn't itself a JS object: the matcher the Intl constructors share to
// resolve a requested locale list down to one supported locale (§3.6's
// "Intl providers"). pkg/builtins/intl owns constructing Intl.Collator,
// Intl.NumberFormat, and Intl.DateTimeFormat as JS constructor objects
// (registered into the realm's ordinary intrinsics table like everything
// else); this struct is only the locale-negotiation plumbing those
// constructors all share, kept per-realm rather than global so two realms
// can run with different default locales.
type IntlProviders struct {
	// DefaultLocale is used when a caller passes no locale list, or every
	// requested locale fails to match.
	DefaultLocale language.Tag
	// Matcher resolves a requested BCP-47 tag list against the set this
	// realm supports; pkg/builtins/intl calls this for every Intl
	// constructor's locale-negotiation step (ECMA-402's
	// ResolveLocale/LookupMatcher) rather than duplicating tag-matching
	// logic per constructor.
	Matcher language.Matcher
}

func newIntlProviders() *IntlProviders {
	def := language.AmericanEnglish

	return &IntlProviders{
		DefaultLocale: def,
		Matcher:       language.NewMatcher([]language.Tag{def}),
	}
}

// Intl returns this realm's Intl provider bundle.
func (r *Realm) Intl() *IntlProviders { return r.intl }
