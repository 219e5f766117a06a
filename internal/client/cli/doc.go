// Package cli provides the interactive sealbox command-line client.
//
// It wires configuration, the local offline cache, API services, and an
// interactive REPL that supports online/offline operation. Typical flow:
// prompt for credentials, start a background connectivity watcher, and
// execute user commands.
//
// Key features:
//   - Register / Login / Logout (online with offline fallback)
//   - Vault entries: logins, notes, credit cards (add, list, show, delete)
//   - Sealed files: seal/open locally, upload/download/delete remotely
//   - Detached signatures: keygen, sign, verify
//   - Sync with the server
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
