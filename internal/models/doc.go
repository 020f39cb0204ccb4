// Package models defines the core domain models for regdesk.
//
// # Current Models
//
// The following models are actively used:
//   - TeamRecord: an in-progress (draft) team registration bound to a slot
//   - Member: one participant on a team
//   - DraftSnapshot: a session's draft state as persisted between requests
//
// A school may register up to MaxSlots teams, numbered 1..MaxSlots. A slot's
// displayed status is always computed from the draft mapping plus the
// upstream confirmed list, never stored, so a slot can never be both Draft
// and Registered at once.
//
// # Design Principles
//
//  1. Drafts are permissive: a TeamRecord may be arbitrarily incomplete;
//     completeness is checked only when a slot is about to be submitted
//  2. Members are replaced wholesale: partial updates never merge member
//     lists element-wise, so a team-size change cannot leave stale entries
//  3. Avoid circular references: slots reference teams by number, sessions
//     by ID string
package models
