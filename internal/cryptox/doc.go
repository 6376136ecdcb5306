// Package cryptox derives the session key from the user password and
// encrypts individual text fields with it.
//
// Every stored string (note names, note bodies, the password-check value) is
// sealed on its own with AES-256-GCM and a fresh nonce. A wrong key or a
// modified field is reported as ErrAuthentication; a field that opens but
// does not hold UTF-8 text is reported as ErrDataCorruption.
package cryptox
