// Package sanitizer normalizes free-text input before validation and storage.
//
// All functions are idempotent. They never fail; invalid input comes back
// empty and is then rejected by validation.
//
// Normalization includes:
//   - Names and cities: trim, collapse inner whitespace
//   - Identifiers (shipper ids): trim only
//   - Truck types: trim, collapse whitespace, case preserved; truck types are
//     opaque strings and must match exactly between loads and fleets
//   - Truck maps: keys normalized as truck types, colliding keys summed
package sanitizer
