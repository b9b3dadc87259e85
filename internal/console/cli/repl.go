package cli

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a stub.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	ListBuildings(ctx context.Context) error
	SearchBuildings(ctx context.Context, query string) error
	ListDevices(ctx context.Context, buildingID int, search string) error
	SetSchedule(ctx context.Context, buildingID int) error
	EditIgnores(ctx context.Context, buildingID int) error
	Reevaluate(ctx context.Context, buildingID int) error
	ListQueries(ctx context.Context) error
	EditQuery(ctx context.Context, name string) error
	DeleteQuery(ctx context.Context, name string) error
	ListUsers(ctx context.Context) error
	AddUser(ctx context.Context) error
	RemoveUser(ctx context.Context, id int) error
}

// runREPL starts the read-eval-print loop for the console.
//
// It reads a line from the provided reader, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on EOF or when the user types "exit" or
// "quit". The same reader is shared with the interactive prompts, so
// command lines and prompt answers are never buffered apart.
//
// Errors returned by command handlers are ignored here; handlers print
// their own errors. This keeps the loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("dvc> %s > ", statusFn()))
		line, readErr := reader.ReadString('\n')
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if readErr != nil {
				return
			}
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			printHelp(a)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "passwd":
			_ = a.ChangePassword(ctx)

		case "b", "buildings":
			_ = a.ListBuildings(ctx)

		case "search":
			_ = a.SearchBuildings(ctx, strings.Join(args, " "))

		case "d", "devices":
			id, ok := intArg(args, 0)
			if !ok {
				printlnFn("Usage: devices <building-id> [search]")
				continue
			}
			_ = a.ListDevices(ctx, id, strings.Join(argsFrom(args, 1), " "))

		case "schedule":
			id, ok := intArg(args, 0)
			if !ok {
				printlnFn("Usage: schedule <building-id>")
				continue
			}
			_ = a.SetSchedule(ctx, id)

		case "ignore":
			id, ok := intArg(args, 0)
			if !ok {
				printlnFn("Usage: ignore <building-id>")
				continue
			}
			_ = a.EditIgnores(ctx, id)

		case "reevaluate":
			id, ok := intArg(args, 0)
			if !ok {
				printlnFn("Usage: reevaluate <building-id>")
				continue
			}
			_ = a.Reevaluate(ctx, id)

		case "queries":
			_ = a.ListQueries(ctx)

		case "query":
			if len(args) == 0 {
				printlnFn("Usage: query <name> | query delete <name>")
				continue
			}
			if args[0] == "delete" {
				if len(args) < 2 {
					printlnFn("Usage: query delete <name>")
					continue
				}
				_ = a.DeleteQuery(ctx, args[1])
				continue
			}
			_ = a.EditQuery(ctx, args[0])

		case "users":
			_ = a.ListUsers(ctx)

		case "adduser":
			_ = a.AddUser(ctx)

		case "deluser":
			id, ok := intArg(args, 0)
			if !ok {
				printlnFn("Usage: deluser <id>")
				continue
			}
			_ = a.RemoveUser(ctx, id)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if readErr != nil {
			return
		}
	}
}

func printHelp(a execIface) {
	if !a.isLoggedIn() {
		printlnFn("Available commands: login, exit")
		return
	}
	if a.isAdmin() {
		printlnFn("Available commands: (b)uildings, search, (d)evices, schedule, ignore, reevaluate, queries, query, users, adduser, deluser, passwd, logout, exit")
		return
	}
	printlnFn("Available commands: (b)uildings, search, (d)evices, schedule, ignore, reevaluate, passwd, logout, exit")
}

func intArg(args []string, i int) (int, bool) {
	if i >= len(args) {
		return 0, false
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, false
	}
	return n, true
}

func argsFrom(args []string, i int) []string {
	if i >= len(args) {
		return nil
	}
	return args[i:]
}
