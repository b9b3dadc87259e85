package console

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// QueryMetadata is one row of the template list. A nil UpdatedAt means the
// template is at its server-shipped default.
type QueryMetadata struct {
	QueryName   string  `json:"query_name"`
	Description string  `json:"description"`
	CreatedAt   *string `json:"created_at"`
	UpdatedAt   *string `json:"updated_at"`
	IsDefault   bool    `json:"is_default"`
}

// QueryTemplate is a full template with its SQL text.
type QueryTemplate struct {
	QueryName   string  `json:"query_name"`
	QuerySQL    string  `json:"query_sql"`
	Description string  `json:"description"`
	CreatedAt   *string `json:"created_at"`
	UpdatedAt   *string `json:"updated_at"`
}

// Customized reports whether the template has been saved over its default.
func (t QueryTemplate) Customized() bool {
	return t.UpdatedAt != nil
}

// TestResult is the payload of a server-side syntax check.
type TestResult struct {
	QueryName string `json:"query_name"`
	Valid     bool   `json:"valid"`
	Message   string `json:"message"`
	SQL       string `json:"sql"`
}

// FetchQueries lists template metadata.
func (c *Client) FetchQueries(ctx context.Context, sess Session) ([]QueryMetadata, error) {
	var queries []QueryMetadata
	if err := c.do(ctx, http.MethodGet, "/api/admin/queries", sess, nil, &queries); err != nil {
		return nil, err
	}
	return queries, nil
}

// FetchQuery fetches one template with its effective SQL.
func (c *Client) FetchQuery(ctx context.Context, sess Session, name string) (*QueryTemplate, error) {
	var tpl QueryTemplate
	if err := c.do(ctx, http.MethodGet, "/api/admin/queries/"+name, sess, nil, &tpl); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// FetchDefaultQuery fetches the built-in default text for a template.
func (c *Client) FetchDefaultQuery(ctx context.Context, sess Session, name string) (*QueryTemplate, error) {
	var tpl QueryTemplate
	if err := c.do(ctx, http.MethodGet, "/api/admin/queries/"+name+"/default", sess, nil, &tpl); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// TestQuery asks the server to syntax-check a template's effective SQL.
func (c *Client) TestQuery(ctx context.Context, sess Session, name string) (*TestResult, error) {
	var result TestResult
	if err := c.do(ctx, http.MethodPost, "/api/admin/queries/"+name+"/test", sess, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SaveQuery saves or overwrites a template.
func (c *Client) SaveQuery(ctx context.Context, sess Session, name, sql, description string) error {
	return c.do(ctx, http.MethodPost, "/api/admin/queries", sess, map[string]string{
		"query_name":  name,
		"query_sql":   sql,
		"description": description,
	}, nil)
}

// EditorState is the lifecycle of one template in the editor.
type EditorState int

const (
	Unloaded EditorState = iota
	Loaded
	Editing
	Saved
	Discarded
)

// EditMode selects which view of the SQL the operator works in.
type EditMode int

const (
	// ModeAdvanced edits the raw SQL text.
	ModeAdvanced EditMode = iota
	// ModeBasic edits two structured fields substituted into the SQL.
	ModeBasic
)

// The two recognized substitution points of basic mode: a device-type
// filter clause and the FROM-table identifier. Every occurrence of each
// pattern is substituted identically.
var (
	deviceTypeRe  = regexp.MustCompile(`(?i)(dvcDeviceType_FRK\s*=\s*)(\d+)`)
	sourceTableRe = regexp.MustCompile(`(?i)(\bFROM\s+)([A-Za-z_][A-Za-z0-9_]*)`)
)

// ErrValidation is a client-side validation failure, caught before any
// network call.
var ErrValidation = errors.New("query must be a SELECT statement")

// QueryEditor edits one named template as "authoritative SQL text plus a
// derived, regenerable structured view". The basic-mode fields are never a
// second source of truth: they are re-derived from the text on every mode
// switch and folded back in via substitution on save.
type QueryEditor struct {
	Client *Client
	Name   string

	state       EditorState
	mode        EditMode
	sql         string // authoritative text as last loaded
	editedSQL   string // advanced-mode working text
	description string
	customized  bool

	// basic-mode derived fields; empty when the pattern was not found
	DeviceType  string
	SourceTable string
}

// NewQueryEditor creates an editor for the named template.
func NewQueryEditor(client *Client, name string) *QueryEditor {
	return &QueryEditor{Client: client, Name: name}
}

// State returns the editor's lifecycle state.
func (e *QueryEditor) State() EditorState { return e.state }

// Mode returns the active edit mode.
func (e *QueryEditor) Mode() EditMode { return e.mode }

// SQL returns the authoritative template text as last loaded.
func (e *QueryEditor) SQL() string { return e.sql }

// Customized reports whether the loaded template overrides the default.
func (e *QueryEditor) Customized() bool { return e.customized }

// Description returns the template description.
func (e *QueryEditor) Description() string { return e.description }

// Load fetches the template and populates both edit modes so the operator
// can switch between them without data loss.
func (e *QueryEditor) Load(ctx context.Context, sess Session) error {
	tpl, err := e.Client.FetchQuery(ctx, sess, e.Name)
	if err != nil {
		return err
	}
	e.sql = tpl.QuerySQL
	e.editedSQL = tpl.QuerySQL
	e.description = tpl.Description
	e.customized = tpl.Customized()
	e.state = Loaded
	e.deriveBasicFields()
	return nil
}

// deriveBasicFields re-derives the structured view from the authoritative
// text. Unmatched patterns leave the field blank.
func (e *QueryEditor) deriveBasicFields() {
	e.DeviceType = ""
	e.SourceTable = ""
	if m := deviceTypeRe.FindStringSubmatch(e.sql); m != nil {
		e.DeviceType = m[2]
	}
	if m := sourceTableRe.FindStringSubmatch(e.sql); m != nil {
		e.SourceTable = m[2]
	}
}

// SwitchMode changes the edit mode, re-deriving the inactive view from the
// authoritative text.
func (e *QueryEditor) SwitchMode(mode EditMode) {
	if e.mode == mode {
		return
	}
	e.mode = mode
	if mode == ModeBasic {
		e.deriveBasicFields()
	} else {
		e.editedSQL = e.BuildEffectiveSQL()
	}
}

// SetSQL replaces the advanced-mode working text.
func (e *QueryEditor) SetSQL(text string) {
	e.editedSQL = text
	e.state = Editing
}

// SetBasicFields replaces the basic-mode fields.
func (e *QueryEditor) SetBasicFields(deviceType, sourceTable string) {
	e.DeviceType = strings.TrimSpace(deviceType)
	e.SourceTable = strings.TrimSpace(sourceTable)
	e.state = Editing
}

// BuildEffectiveSQL produces the SQL that a save would persist. In
// advanced mode this is the working text verbatim; in basic mode the
// last-loaded SQL acts as the template and every occurrence of the two
// recognized patterns is substituted. A blank field, or a field whose
// pattern does not occur in the text, is a no-op.
func (e *QueryEditor) BuildEffectiveSQL() string {
	if e.mode == ModeAdvanced {
		return e.editedSQL
	}

	sql := e.sql
	if e.DeviceType != "" {
		sql = deviceTypeRe.ReplaceAllString(sql, "${1}"+e.DeviceType)
	}
	if e.SourceTable != "" {
		sql = sourceTableRe.ReplaceAllString(sql, "${1}"+e.SourceTable)
	}
	return sql
}

// MissingFields lists basic-mode fields whose pattern was not found in the
// current text. Substitution for those fields silently has no effect, so
// callers should warn before a save.
func (e *QueryEditor) MissingFields() []string {
	var missing []string
	if !deviceTypeRe.MatchString(e.sql) {
		missing = append(missing, "device type")
	}
	if !sourceTableRe.MatchString(e.sql) {
		missing = append(missing, "source table")
	}
	return missing
}

// Validate is the client-side check: the trimmed, case-insensitive text
// must begin with "select". The server re-validates on save.
func (e *QueryEditor) Validate() error {
	sql := strings.ToLower(strings.TrimSpace(e.BuildEffectiveSQL()))
	if !strings.HasPrefix(sql, "select") {
		return ErrValidation
	}
	return nil
}

// Save validates, persists the effective SQL, and reloads the template to
// pick up the server's updated timestamp. Confirmation is the caller's
// responsibility.
func (e *QueryEditor) Save(ctx context.Context, sess Session, description string) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if description == "" {
		description = e.description
	}
	if err := e.Client.SaveQuery(ctx, sess, e.Name, e.BuildEffectiveSQL(), description); err != nil {
		return err
	}
	e.state = Saved
	return e.Load(ctx, sess)
}

// ResetToDefault replaces the in-progress edit with the server's built-in
// default text. The server record is untouched until the next save.
func (e *QueryEditor) ResetToDefault(ctx context.Context, sess Session) error {
	tpl, err := e.Client.FetchDefaultQuery(ctx, sess, e.Name)
	if err != nil {
		return err
	}
	e.sql = tpl.QuerySQL
	e.editedSQL = tpl.QuerySQL
	e.state = Editing
	e.deriveBasicFields()
	return nil
}

// Discard drops the in-progress edit and restores the loaded text.
func (e *QueryEditor) Discard() {
	e.editedSQL = e.sql
	e.state = Discarded
	e.deriveBasicFields()
}

// Test runs the server-side syntax check for the template.
func (e *QueryEditor) Test(ctx context.Context, sess Session) (*TestResult, error) {
	return e.Client.TestQuery(ctx, sess, e.Name)
}

// DeleteQuery removes a template customization, reverting it to default.
func (c *Client) DeleteQuery(ctx context.Context, sess Session, name string) error {
	return c.do(ctx, http.MethodDelete, "/api/admin/queries/"+name, sess, nil, nil)
}

// String implements fmt.Stringer for EditorState, mainly for prompts.
func (s EditorState) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loaded:
		return "loaded"
	case Editing:
		return "editing"
	case Saved:
		return "saved"
	case Discarded:
		return "discarded"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}
