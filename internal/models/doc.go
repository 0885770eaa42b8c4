// Package models defines the records the Ad Paws dashboard exchanges with the
// GraphQL backend and with the browser frontend.
//
// # Ownership
//
// None of these records is authoritative here. Dogs, owners, services,
// reservations and companies live in the backend; the dashboard only carries
// the fields its views render and the inputs its forms submit.
//
// # Identifiers
//
// The backend mixes ID scalars (serialized as strings) and Int fields for the
// same entities depending on the query. ID accepts both on the wire and always
// renders as a string, so views never have to care.
//
// # Enumerations
//
// ServiceType, Size, Gender, Role and the status types mirror the backend
// enums verbatim. Spanish labels for them live next to the enum so the
// frontend and the CLI print the same words.
package models
