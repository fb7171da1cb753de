// Package pathenv manages the persistent PATH environment variable.
//
// The actual list edit is a pure function (Update) over PATH segments; the
// environment write is isolated behind the Store interface, with a shell
// profile implementation for real runs and an in-memory one for tests.
package pathenv
