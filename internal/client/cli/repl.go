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
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	AddNote(ctx context.Context) error
	AddLogin(ctx context.Context) error
	AddCreditCard(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context) error
	Delete(ctx context.Context) error
	Sync(ctx context.Context) error
	SealFile(ctx context.Context) error
	OpenFile(ctx context.Context) error
	UploadFile(ctx context.Context) error
	DownloadFile(ctx context.Context) error
	ListFiles(ctx context.Context) error
	DeleteFile(ctx context.Context) error
	Keygen(ctx context.Context) error
	SignFile(ctx context.Context) error
	VerifyFile(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the sealbox CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Always available:
//	  - help           — show available commands
//	  - seal | open    — seal or open a local file with a password
//	  - keygen         — generate a signing keypair
//	  - sign | verify  — create or check a detached signature
//	  - exit | quit    — leave the program
//
//	Not logged in:
//	  - register       — create an account
//	  - login          — authenticate
//
//	Logged in:
//	  - addnote        — add a note
//	  - addlogin       — add login credentials
//	  - addcard        — add a credit card
//	  - list           — list vault entries
//	  - show           — show a single entry (interactive ID prompt)
//	  - delete         — delete a single entry
//	  - sync           — refresh the local copy from the server
//	  - files          — list uploaded files
//	  - upload         — seal a local file and store it remotely
//	  - download       — fetch a remote file and open it locally
//	  - delfile        — delete a remote file
//	  - logout         — log out
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("sealbox %s > ", statusFn()))
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
			if a.isLoggedIn() {
				printlnFn("Vault: addnote, addlogin, addcard, (l)ist, show, delete, sync, logout")
				printlnFn("Files: seal, open, files, upload, download, delfile")
				printlnFn("Signing: keygen, sign, verify")
				printlnFn("Other: help, exit")
			} else {
				printlnFn("Available commands: register, login, seal, open, keygen, sign, verify, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "addnote":
			_ = a.AddNote(ctx)

		case "addlogin":
			_ = a.AddLogin(ctx)

		case "addcard":
			_ = a.AddCreditCard(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "show":
			_ = a.Show(ctx)

		case "delete":
			_ = a.Delete(ctx)

		case "sync":
			_ = a.Sync(ctx)

		case "seal":
			_ = a.SealFile(ctx)

		case "open":
			_ = a.OpenFile(ctx)

		case "files":
			_ = a.ListFiles(ctx)

		case "upload":
			_ = a.UploadFile(ctx)

		case "download":
			_ = a.DownloadFile(ctx)

		case "delfile":
			_ = a.DeleteFile(ctx)

		case "keygen":
			_ = a.Keygen(ctx)

		case "sign":
			_ = a.SignFile(ctx)

		case "verify":
			_ = a.VerifyFile(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
