// Package models defines domain entities shared across the JustMusik client.
//
// The package contains two categories of types:
//
// 1. Catalog entities fetched from the platform:
//   - [Song] : read-only song metadata; the client never mutates copies in place
//   - [User] : the authenticated identity with role helpers ([User.IsAdmin])
//
// 2. Wire payloads for the auth endpoints:
//   - [Credentials] / [Registration] : request bodies for signin and signup
//   - [SignInResponse] : token plus flattened identity fields
//
// Role checks are string-set membership against the platform's role names
// ([RoleAdmin], [RoleUser]); admin capability gates the mutation flows.
package models
