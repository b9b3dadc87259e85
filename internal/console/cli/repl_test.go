package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	admin    bool

	// when set, SetSchedule reads its prompt answer from here, like the
	// real app reads prompts from the reader shared with the loop
	reader *bufio.Reader

	calls []string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) isAdmin() bool    { return f.admin }
func (f *fakeExec) Login(ctx context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}
func (f *fakeExec) ChangePassword(ctx context.Context) error {
	f.calls = append(f.calls, "passwd")
	return nil
}
func (f *fakeExec) ListBuildings(ctx context.Context) error {
	f.calls = append(f.calls, "buildings")
	return nil
}
func (f *fakeExec) SearchBuildings(ctx context.Context, query string) error {
	f.calls = append(f.calls, "search:"+query)
	return nil
}
func (f *fakeExec) ListDevices(ctx context.Context, buildingID int, search string) error {
	f.calls = append(f.calls, fmt.Sprintf("devices:%d:%s", buildingID, search))
	return nil
}
func (f *fakeExec) SetSchedule(ctx context.Context, buildingID int) error {
	if f.reader != nil {
		answer, _ := f.reader.ReadString('\n')
		f.calls = append(f.calls, fmt.Sprintf("schedule:%d:%s", buildingID, strings.TrimSpace(answer)))
		return nil
	}
	f.calls = append(f.calls, fmt.Sprintf("schedule:%d", buildingID))
	return nil
}
func (f *fakeExec) EditIgnores(ctx context.Context, buildingID int) error {
	f.calls = append(f.calls, fmt.Sprintf("ignore:%d", buildingID))
	return nil
}
func (f *fakeExec) Reevaluate(ctx context.Context, buildingID int) error {
	f.calls = append(f.calls, fmt.Sprintf("reevaluate:%d", buildingID))
	return nil
}
func (f *fakeExec) ListQueries(ctx context.Context) error {
	f.calls = append(f.calls, "queries")
	return nil
}
func (f *fakeExec) EditQuery(ctx context.Context, name string) error {
	f.calls = append(f.calls, "query:"+name)
	return nil
}
func (f *fakeExec) DeleteQuery(ctx context.Context, name string) error {
	f.calls = append(f.calls, "delquery:"+name)
	return nil
}
func (f *fakeExec) ListUsers(ctx context.Context) error {
	f.calls = append(f.calls, "users")
	return nil
}
func (f *fakeExec) AddUser(ctx context.Context) error {
	f.calls = append(f.calls, "adduser")
	return nil
}
func (f *fakeExec) RemoveUser(ctx context.Context, id int) error {
	f.calls = append(f.calls, fmt.Sprintf("deluser:%d", id))
	return nil
}

func silencePrintln(t *testing.T) {
	t.Helper()
	orig := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = orig })
}

func runLines(a execIface, lines ...string) {
	input := strings.NewReader(strings.Join(lines, "\n") + "\n")
	runREPL(context.Background(), a, func() string { return "test" }, bufio.NewReader(input))
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	silencePrintln(t)
	f := &fakeExec{loggedIn: true, admin: true}

	runLines(f,
		"buildings",
		"search north tower",
		"devices 7 front door",
		"schedule 7",
		"ignore 7",
		"reevaluate 7",
		"queries",
		"query panel_devices",
		"query delete panel_devices",
		"users",
		"adduser",
		"deluser 3",
		"exit",
	)

	assert.Equal(t, []string{
		"buildings",
		"search:north tower",
		"devices:7:front door",
		"schedule:7",
		"ignore:7",
		"reevaluate:7",
		"queries",
		"query:panel_devices",
		"delquery:panel_devices",
		"users",
		"adduser",
		"deluser:3",
	}, f.calls)
}

func TestRunREPL_Aliases(t *testing.T) {
	silencePrintln(t)
	f := &fakeExec{loggedIn: true}

	runLines(f, "b", "d 2", "quit")
	assert.Equal(t, []string{"buildings", "devices:2:"}, f.calls)
}

func TestRunREPL_BadArgumentsDoNotDispatch(t *testing.T) {
	silencePrintln(t)
	f := &fakeExec{loggedIn: true}

	runLines(f, "devices", "devices abc", "schedule", "deluser x", "query", "exit")
	assert.Empty(t, f.calls)
}

func TestRunREPL_UnknownAndEmptyLines(t *testing.T) {
	silencePrintln(t)
	f := &fakeExec{}

	runLines(f, "", "   ", "frobnicate", "login", "exit")
	assert.Equal(t, []string{"login"}, f.calls)
}

func TestRunREPL_ExitsOnEOF(t *testing.T) {
	silencePrintln(t)
	f := &fakeExec{}

	input := strings.NewReader("login\n")
	runREPL(context.Background(), f, func() string { return "" }, bufio.NewReader(input))
	assert.Equal(t, []string{"login"}, f.calls)
}

func TestRunREPL_SharedReaderInterleavesPromptsWithCommands(t *testing.T) {
	silencePrintln(t)

	// One reader feeds both the command loop and a handler's prompt; with
	// piped input the prompt answer must not be swallowed by the loop and
	// the following command must still dispatch.
	input := bufio.NewReader(strings.NewReader("schedule 7\n09:30\nbuildings\nexit\n"))
	f := &fakeExec{loggedIn: true, reader: input}

	runREPL(context.Background(), f, func() string { return "test" }, input)
	assert.Equal(t, []string{"schedule:7:09:30", "buildings"}, f.calls)
}
