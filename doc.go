// Package gotacacs implements the TACACS+ wire protocol as defined in
// RFC8907: packet headers, the AUTHEN/AUTHOR/ACCT packet bodies, the MD5
// pseudo-pad obfuscation, and the Conn/Listener/Dialer transport
// abstractions. Higher-level connection handling, session state, and
// policy evaluation live in github.com/vitalvas/tacacsd/internal.
package gotacacs
