package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isSignedIn() bool
	Register(ctx context.Context) error
	Confirm(ctx context.Context) error
	Resend(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Send(ctx context.Context) error
	Sent(ctx context.Context) error
	Received(ctx context.Context) error
	Download(ctx context.Context) error
	Notifications(ctx context.Context) error
	MarkRead(ctx context.Context) error
	Dismiss(ctx context.Context) error
}

// runREPL starts a read-eval-print loop for the VaultShare CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Commands when not signed in: register, confirm, resend, login, exit.
// Commands when signed in: send, sent, received, download, notifications,
// read, dismiss, logout, exit.
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("vs> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isSignedIn() {
				printlnFn("Available commands: send, sent, received, download, (n)otifications, read, dismiss, logout, exit")
			} else {
				printlnFn("Available commands: register, confirm, resend, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "confirm":
			_ = a.Confirm(ctx)

		case "resend":
			_ = a.Resend(ctx)

		case "login":
			_ = a.Login(ctx)

		case "send":
			_ = a.Send(ctx)

		case "sent":
			_ = a.Sent(ctx)

		case "received":
			_ = a.Received(ctx)

		case "download":
			_ = a.Download(ctx)

		case "n", "notifications":
			_ = a.Notifications(ctx)

		case "read":
			_ = a.MarkRead(ctx)

		case "dismiss":
			_ = a.Dismiss(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
