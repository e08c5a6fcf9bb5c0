// Package attrs provides the minimal name/value attribute model the policy
// layer reads and writes. It is a deliberately small stand-in for a full
// attribute dictionary subsystem: attributes are identified by name only, and
// values are carried as `any`, with typed getters for string and []byte
// values (GetString, GetBytes); other types are read with Get and a type
// assertion.
package attrs
