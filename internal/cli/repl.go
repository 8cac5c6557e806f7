package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. The real App
// satisfies it; tests use a stub.
type execIface interface {
	isLoggedIn() bool
	markActivity()

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	RefreshSession(ctx context.Context) error

	Browse(ctx context.Context, args []string) error
	Mine(ctx context.Context) error
	Show(ctx context.Context, id string) error
	AddRecipe(ctx context.Context) error
	EditRecipe(ctx context.Context, id string) error
	DeleteRecipe(ctx context.Context, id string) error

	ToggleSave(ctx context.Context, id string) error
	Saved(ctx context.Context) error

	ShowProfile(ctx context.Context) error
	EditProfile(ctx context.Context) error
	SetAvatar(ctx context.Context, path string) error
}

// runREPL reads lines, parses the first token as the command and dispatches.
// Command errors are printed by the handlers themselves; the loop only cares
// about I/O. Exits on EOF, "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("recipebox %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		a.markActivity()

		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: browse [category] [search], mine, show <id>, add, edit <id>, delete <id>, save <id>, saved, profile, editprofile, avatar <path>, whoami, refresh, logout, exit")
			} else {
				printlnFn("Available commands: browse [category] [search], show <id>, register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "refresh":
			_ = a.RefreshSession(ctx)

		case "b", "browse":
			_ = a.Browse(ctx, args)

		case "mine":
			_ = a.Mine(ctx)

		case "show":
			if len(args) == 0 {
				printlnFn("Usage: show <id>")
				continue
			}
			_ = a.Show(ctx, args[0])

		case "add":
			_ = a.AddRecipe(ctx)

		case "edit":
			if len(args) == 0 {
				printlnFn("Usage: edit <id>")
				continue
			}
			_ = a.EditRecipe(ctx, args[0])

		case "delete":
			if len(args) == 0 {
				printlnFn("Usage: delete <id>")
				continue
			}
			_ = a.DeleteRecipe(ctx, args[0])

		case "save":
			if len(args) == 0 {
				printlnFn("Usage: save <id>")
				continue
			}
			_ = a.ToggleSave(ctx, args[0])

		case "saved":
			_ = a.Saved(ctx)

		case "profile":
			_ = a.ShowProfile(ctx)

		case "editprofile":
			_ = a.EditProfile(ctx)

		case "avatar":
			if len(args) == 0 {
				printlnFn("Usage: avatar <path>")
				continue
			}
			_ = a.SetAvatar(ctx, args[0])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
