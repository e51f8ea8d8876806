// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "strings"

// ObjectType identifies a category of synchronized items. Every object type
// owns an independent fingerprint namespace in the durable store.
type ObjectType string

const (
	// Contact is an address-book entry.
	Contact ObjectType = "contact"

	// Event is a calendar entry.
	Event ObjectType = "event"

	// Todo is a task-list entry.
	Todo ObjectType = "todo"
)

// String implements fmt.Stringer.
func (t ObjectType) String() string {
	return string(t)
}

// Valid reports whether t is a usable object type tag.
func (t ObjectType) Valid() bool {
	return strings.TrimSpace(string(t)) != ""
}

// ParseObjectTypes splits a comma separated list ("contact, todo") into object
// types, dropping blanks and duplicates while keeping the original order.
func ParseObjectTypes(raw string) []ObjectType {
	parts := strings.Split(raw, ",")
	types := make([]ObjectType, 0, len(parts))
	seen := make(map[ObjectType]struct{}, len(parts))
	for _, p := range parts {
		t := ObjectType(strings.TrimSpace(p))
		if !t.Valid() {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		types = append(types, t)
	}
	return types
}
