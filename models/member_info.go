// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// ObjectTypeInfo declares an accepted object type and the object format the
// member reads and writes for it.
type ObjectTypeInfo struct {
	Type   ObjectType `json:"type"`
	Format string     `json:"format"`
}

// Timeouts bounds the externally visible phases of a session.
type Timeouts struct {
	Connect   time.Duration `json:"connect"`
	Enumerate time.Duration `json:"enumerate"`
	Apply     time.Duration `json:"apply"`
}

// MemberInfo describes a synchronized member. It is built by the caller and
// passed into constructors; there is no process-wide registry.
type MemberInfo struct {
	Name        string           `json:"name"`
	LongName    string           `json:"long_name"`
	Description string           `json:"description"`
	ObjectTypes []ObjectTypeInfo `json:"object_types"`
	Timeouts    Timeouts         `json:"timeouts"`
}

// Default phase timeouts.
const (
	DefaultConnectTimeout = 5 * time.Second
	DefaultPhaseTimeout   = 60 * time.Second
)

// DefaultMemberInfo returns the descriptor of the Zaurus DTM member with the
// contact, event and todo object types.
func DefaultMemberInfo() MemberInfo {
	return MemberInfo{
		Name:     "zdtm-sync",
		LongName: "Zaurus DTM Synchronization",
		Description: "Synchronizes Personal Mobile Tools running a DTM based ROM " +
			"over the device bridge.",
		ObjectTypes: []ObjectTypeInfo{
			{Type: Todo, Format: "zdtm-todo"},
			{Type: Contact, Format: "zdtm-contact"},
			{Type: Event, Format: "zdtm-event"},
		},
		Timeouts: Timeouts{
			Connect:   DefaultConnectTimeout,
			Enumerate: DefaultPhaseTimeout,
			Apply:     DefaultPhaseTimeout,
		},
	}
}

// Accepts reports whether the member declares objectType.
func (m MemberInfo) Accepts(objectType ObjectType) bool {
	_, ok := m.Format(objectType)
	return ok
}

// Format returns the object format declared for objectType.
func (m MemberInfo) Format(objectType ObjectType) (string, bool) {
	for _, info := range m.ObjectTypes {
		if info.Type == objectType {
			return info.Format, true
		}
	}
	return "", false
}

// Types lists the declared object types in declaration order.
func (m MemberInfo) Types() []ObjectType {
	types := make([]ObjectType, 0, len(m.ObjectTypes))
	for _, info := range m.ObjectTypes {
		types = append(types, info.Type)
	}
	return types
}
