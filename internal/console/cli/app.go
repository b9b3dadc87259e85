package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Akankshas1102/amazondvc-admin/internal/console"
)

// App holds the console's interactive state: the API client, the session
// facades and the current session value. The session is kept here and
// passed explicitly into every call.
type App struct {
	client    *console.Client
	auth      *console.Auth
	buildings *console.Buildings
	debounce  *console.Debouncer

	session console.Session
	reader  *bufio.Reader
	out     io.Writer
}

// NewApp wires the facades around a client and a session file path.
func NewApp(baseURL, sessionPath string) *App {
	client := console.NewClient(baseURL)
	store := console.NewSessionStore(sessionPath)

	a := &App{
		client:    client,
		auth:      console.NewAuth(client, store),
		buildings: console.NewBuildings(client),
		debounce:  console.NewDebouncer(0),
		reader:    bufio.NewReader(os.Stdin),
		out:       os.Stdout,
	}

	// Busy indicator around every request.
	client.OnRequestStart = func() { fmt.Fprint(a.out, "… ") }
	client.OnRequestEnd = func() { fmt.Fprint(a.out, "\r") }

	return a
}

// Run restores a stored session if one verifies, then enters the REPL.
func (a *App) Run(ctx context.Context) {
	if sess, err := a.auth.Require(ctx, false); err == nil {
		a.session = sess
		fmt.Fprintf(a.out, "Resumed session for %s\n", sess.Username)
	}

	runREPL(ctx, a, a.status, a.reader)
	a.debounce.Stop()
}

func (a *App) isLoggedIn() bool {
	return a.session.Token != ""
}

func (a *App) isAdmin() bool {
	return a.session.IsAdmin
}

func (a *App) status() string {
	if !a.isLoggedIn() {
		return "logged out"
	}
	if a.isAdmin() {
		return a.session.Username + " (admin)"
	}
	return a.session.Username
}

// Login prompts for credentials and stores the session on success.
func (a *App) Login(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out, "Password: ")
	if err != nil {
		return err
	}

	sess, err := a.auth.Login(ctx, username, string(password))
	if err != nil {
		fmt.Fprintf(a.out, "Login failed: %v\n", err)
		return err
	}
	a.session = sess
	fmt.Fprintf(a.out, "Logged in as %s\n", sess.Username)
	return nil
}

// Logout asks for confirmation, then clears the stored session.
func (a *App) Logout(ctx context.Context) error {
	ok, err := Confirm(a.reader, "Log out?", a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.auth.Logout(); err != nil {
		return err
	}
	a.session = console.Session{}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// ChangePassword prompts for the current and new passwords. On success the
// session is dropped and the user must log in again.
func (a *App) ChangePassword(ctx context.Context) error {
	current, err := GetPassword(a.out, "Current password: ")
	if err != nil {
		return err
	}
	next, err := GetPassword(a.out, "New password: ")
	if err != nil {
		return err
	}

	if err := a.client.ChangePassword(ctx, a.session, string(current), string(next)); err != nil {
		fmt.Fprintf(a.out, "Password change failed: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Password changed. Please log in again.")
	_ = a.auth.Logout()
	a.session = console.Session{}
	return nil
}

// ListBuildings prints the full building list.
func (a *App) ListBuildings(ctx context.Context) error {
	buildings, err := a.buildings.ListBuildings(ctx, a.session)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return err
	}
	a.printBuildings(buildings)
	return nil
}

// SearchBuildings filters the cached building list client-side; the list
// is fetched only when the cache is empty. The lookup is routed through
// the debouncer so rapid repeated searches coalesce into one.
func (a *App) SearchBuildings(ctx context.Context, query string) error {
	done := make(chan struct{})
	a.debounce.Do(func() {
		defer close(done)
		if err := a.buildings.EnsureBuildings(ctx, a.session); err != nil {
			fmt.Fprintf(a.out, "Error: %v\n", err)
			return
		}
		a.printBuildings(a.buildings.SearchBuildings(query))
	})
	<-done
	return nil
}

func (a *App) printBuildings(buildings []console.Building) {
	if len(buildings) == 0 {
		fmt.Fprintln(a.out, "No buildings found.")
		return
	}
	fmt.Fprintf(a.out, "%-8s %-40s %s\n", "ID", "NAME", "START TIME")
	for _, b := range buildings {
		start := b.StartTime
		if start == "" {
			start = "-"
		}
		fmt.Fprintf(a.out, "%-8d %-40s %s\n", b.ID, b.Name, start)
	}
}

// ListDevices prints a building's proevents with the arm-state rollup.
func (a *App) ListDevices(ctx context.Context, buildingID int, search string) error {
	devices, err := a.buildings.ListDevices(ctx, a.session, buildingID, 100, search)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return err
	}
	if len(devices) == 0 {
		fmt.Fprintln(a.out, console.EmptyDevicesMessage(search))
		return nil
	}

	fmt.Fprintf(a.out, "Building %d: %s\n", buildingID, console.ComputeStatus(devices))
	fmt.Fprintf(a.out, "%-8s %-40s %-10s %s\n", "ID", "NAME", "STATE", "IGNORED")
	for _, d := range devices {
		state := "armed"
		if !d.Armed() {
			state = "disarmed"
		}
		ignored := ""
		if d.IsIgnored {
			ignored = "yes"
		}
		fmt.Fprintf(a.out, "%-8d %-40s %-10s %s\n", d.ID, d.Name, state, ignored)
	}
	return nil
}

// SetSchedule prompts for a start time and pushes it to the server.
func (a *App) SetSchedule(ctx context.Context, buildingID int) error {
	startTime, err := GetSimpleText(a.reader, "Disarm start time (HH:MM, 24h)", a.out)
	if err != nil {
		return err
	}
	if err := a.buildings.UpdateSchedule(ctx, a.session, buildingID, startTime); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return err
	}
	fmt.Fprintf(a.out, "Schedule for building %d set to %s\n", buildingID, startTime)
	return nil
}

// EditIgnores runs the interactive ignore-flag edit for one building: show
// the devices, collect toggles, confirm, then save and reevaluate.
func (a *App) EditIgnores(ctx context.Context, buildingID int) error {
	devices, err := a.buildings.ListDevices(ctx, a.session, buildingID, 100, "")
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return err
	}
	if len(devices) == 0 {
		fmt.Fprintln(a.out, console.EmptyDevicesMessage(""))
		return nil
	}

	byID := make(map[int]console.Device, len(devices))
	for _, d := range devices {
		byID[d.ID] = d
	}

	line, err := GetSimpleText(a.reader, "Device IDs to toggle ignore (comma separated, empty to cancel)", a.out)
	if err != nil {
		return err
	}

	var edits []console.IgnoreEdit
	for _, tok := range strings.Split(line, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		id, err := strconv.Atoi(tok)
		if err != nil {
			fmt.Fprintf(a.out, "Skipping %q: not a device id\n", tok)
			continue
		}
		d, ok := byID[id]
		if !ok {
			fmt.Fprintf(a.out, "Skipping %d: not in this building\n", id)
			continue
		}
		edits = append(edits, console.IgnoreEdit{
			ItemID:     d.ID,
			BuildingID: buildingID,
			DeviceID:   d.ID,
			Ignore:     !d.IsIgnored,
		})
	}

	result, err := a.buildings.SaveIgnoreEdits(ctx, a.session, buildingID, edits, len(devices))
	if err == console.ErrNoChanges {
		fmt.Fprintln(a.out, "No changes to save.")
		return nil
	}
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return err
	}
	fmt.Fprintf(a.out, "Saved. Reevaluated building %d: %d proevents updated (operation %s)\n",
		result.BuildingID, result.Updated, result.OperationID)
	return nil
}

// Reevaluate triggers a state recomputation for a building.
func (a *App) Reevaluate(ctx context.Context, buildingID int) error {
	result, err := a.client.PostReevaluate(ctx, a.session, buildingID)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return err
	}
	a.buildings.InvalidateDevices(buildingID)
	fmt.Fprintf(a.out, "Building %d reevaluated: %d proevents updated\n", result.BuildingID, result.Updated)
	return nil
}

// ListQueries prints the query-template list. Admin only.
func (a *App) ListQueries(ctx context.Context) error {
	queries, err := a.client.FetchQueries(ctx, a.session)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return err
	}
	fmt.Fprintf(a.out, "%-20s %-12s %s\n", "NAME", "STATE", "DESCRIPTION")
	for _, q := range queries {
		state := "default"
		if q.UpdatedAt != nil {
			state = "customized"
		}
		fmt.Fprintf(a.out, "%-20s %-12s %s\n", q.QueryName, state, q.Description)
	}
	return nil
}

// EditQuery runs the interactive query-template editor loop. Admin only.
func (a *App) EditQuery(ctx context.Context, name string) error {
	editor := console.NewQueryEditor(a.client, name)
	if err := editor.Load(ctx, a.session); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return err
	}

	for {
		a.printEditor(editor)
		cmd, err := GetSimpleText(a.reader, "edit> [sql|fields|mode|test|save|reset|discard|quit]", a.out)
		if err != nil {
			return err
		}

		switch cmd {
		case "sql":
			editor.SwitchMode(console.ModeAdvanced)
			text, err := GetMultiline(a.reader, "Enter SQL", a.out)
			if err != nil {
				return err
			}
			if text != "" {
				editor.SetSQL(text)
			}

		case "fields":
			editor.SwitchMode(console.ModeBasic)
			if missing := editor.MissingFields(); len(missing) > 0 {
				fmt.Fprintf(a.out, "Note: not present in this template: %s\n", strings.Join(missing, ", "))
			}
			deviceType, err := GetSimpleText(a.reader, fmt.Sprintf("Device type [%s]", editor.DeviceType), a.out)
			if err != nil {
				return err
			}
			sourceTable, err := GetSimpleText(a.reader, fmt.Sprintf("Source table [%s]", editor.SourceTable), a.out)
			if err != nil {
				return err
			}
			if deviceType == "" {
				deviceType = editor.DeviceType
			}
			if sourceTable == "" {
				sourceTable = editor.SourceTable
			}
			editor.SetBasicFields(deviceType, sourceTable)

		case "mode":
			if editor.Mode() == console.ModeAdvanced {
				editor.SwitchMode(console.ModeBasic)
			} else {
				editor.SwitchMode(console.ModeAdvanced)
			}

		case "test":
			result, err := editor.Test(ctx, a.session)
			if err != nil {
				fmt.Fprintf(a.out, "Error: %v\n", err)
				continue
			}
			fmt.Fprintf(a.out, "Valid: %v (%s)\n", result.Valid, result.Message)

		case "save":
			ok, err := Confirm(a.reader, "Save this template?", a.out)
			if err != nil || !ok {
				continue
			}
			if err := editor.Save(ctx, a.session, ""); err != nil {
				fmt.Fprintf(a.out, "Save failed: %v\n", err)
				continue
			}
			fmt.Fprintln(a.out, "Saved.")

		case "reset":
			ok, err := Confirm(a.reader, "Reset editor to the built-in default?", a.out)
			if err != nil || !ok {
				continue
			}
			if err := editor.ResetToDefault(ctx, a.session); err != nil {
				fmt.Fprintf(a.out, "Error: %v\n", err)
			}

		case "discard":
			editor.Discard()

		case "quit", "exit", "":
			return nil

		default:
			fmt.Fprintln(a.out, "Unknown editor command:", cmd)
		}
	}
}

func (a *App) printEditor(editor *console.QueryEditor) {
	mode := "advanced"
	if editor.Mode() == console.ModeBasic {
		mode = "basic"
	}
	state := "default"
	if editor.Customized() {
		state = "customized"
	}
	fmt.Fprintf(a.out, "\nTemplate %s (%s, %s mode)\n", editor.Name, state, mode)
	fmt.Fprintln(a.out, editor.BuildEffectiveSQL())
	if editor.Mode() == console.ModeBasic {
		fmt.Fprintf(a.out, "Device type: %s  Source table: %s\n", editor.DeviceType, editor.SourceTable)
	}
}

// DeleteQuery removes a template customization after confirmation. Admin only.
func (a *App) DeleteQuery(ctx context.Context, name string) error {
	ok, err := Confirm(a.reader, fmt.Sprintf("Delete customization of %q and revert to default?", name), a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.client.DeleteQuery(ctx, a.session, name); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Deleted. Default will be used.")
	return nil
}

// ListUsers prints the admin user list. Admin only.
func (a *App) ListUsers(ctx context.Context) error {
	users, err := a.client.FetchUsers(ctx, a.session)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return err
	}
	fmt.Fprintf(a.out, "%-8s %-24s %s\n", "ID", "USERNAME", "ADMIN")
	for _, u := range users {
		admin := ""
		if u.IsAdmin {
			admin = "yes"
		}
		fmt.Fprintf(a.out, "%-8d %-24s %s\n", u.ID, u.Username, admin)
	}
	return nil
}

// AddUser creates an admin user interactively. Admin only.
func (a *App) AddUser(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out, "Password: ")
	if err != nil {
		return err
	}
	isAdmin, err := Confirm(a.reader, "Grant admin role?", a.out)
	if err != nil {
		return err
	}

	if err := a.client.CreateUser(ctx, a.session, username, string(password), isAdmin); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return err
	}
	fmt.Fprintf(a.out, "User %s created\n", username)
	return nil
}

// RemoveUser deletes an admin user after confirmation. Admin only.
func (a *App) RemoveUser(ctx context.Context, id int) error {
	ok, err := Confirm(a.reader, fmt.Sprintf("Delete user %d?", id), a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.client.DeleteUser(ctx, a.session, id); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "User deleted.")
	return nil
}
