// Package cli provides the interactive VaultShare command-line client.
//
// It wires configuration, the local notification store, the API client,
// and an interactive REPL. Typical flow: sign in, send a batch of files,
// inspect the sent and received views, download what was shared with you.
//
// Key features:
//   - Register / Confirm / Login / Logout against the backend
//   - Send one or more files with recipients and an expiry
//   - List sent files (server-computed status, access history)
//   - List received files (status derived locally at render time)
//   - Download a received file via a presigned URL
//   - Notifications with locally persisted read/dismissed state
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
