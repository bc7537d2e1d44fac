// Package auth issues and verifies bearer tokens, hashes passwords, and
// resolves an Authorization header to the user it identifies.
package auth
