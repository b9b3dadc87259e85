package console

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Status is the arm-state rollup of a building's device list.
type Status int

const (
	NoDevices Status = iota
	AllArmed
	AllDisarmed
	PartiallyArmed
)

func (s Status) String() string {
	switch s {
	case NoDevices:
		return "no devices"
	case AllArmed:
		return "all armed"
	case AllDisarmed:
		return "all disarmed"
	case PartiallyArmed:
		return "partially armed"
	default:
		return "unknown"
	}
}

// ComputeStatus derives the rollup from a device list. Pure.
func ComputeStatus(devices []Device) Status {
	if len(devices) == 0 {
		return NoDevices
	}
	armed := 0
	for _, d := range devices {
		if d.Armed() {
			armed++
		}
	}
	switch armed {
	case len(devices):
		return AllArmed
	case 0:
		return AllDisarmed
	default:
		return PartiallyArmed
	}
}

// EmptyDevicesMessage is the user-facing text for an empty device list;
// the wording depends on whether a search filter was active.
func EmptyDevicesMessage(search string) string {
	if strings.TrimSpace(search) != "" {
		return "No proevents found matching search."
	}
	return "No proevents found."
}

// ErrNoChanges is returned by SaveIgnoreEdits when the edit list is empty
// but the source list was not: there is nothing to send, and no network
// call is made.
var ErrNoChanges = errors.New("no changes to save")

// Save stages for StageError.
const (
	StageSave  = "save"
	StageApply = "apply"
)

// StageError reports which stage of a two-stage operation failed, so a
// reevaluate failure is never misreported as a save failure.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// startTimeRe validates HH:MM, 24-hour clock.
var startTimeRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Buildings is the building/device façade. It caches the building list for
// client-side search and device lists per building; device caches are
// invalidated by a search, an ignore-edit save, or an explicit collapse.
type Buildings struct {
	Client *Client

	mu        sync.Mutex
	buildings []Building
	devices   map[int][]Device
}

// NewBuildings creates the façade.
func NewBuildings(client *Client) *Buildings {
	return &Buildings{
		Client:  client,
		devices: make(map[int][]Device),
	}
}

// ListBuildings fetches and caches the full building list. An empty result
// is a valid state, not an error.
func (b *Buildings) ListBuildings(ctx context.Context, sess Session) ([]Building, error) {
	buildings, err := b.Client.FetchBuildings(ctx, sess)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.buildings = buildings
	b.mu.Unlock()
	return buildings, nil
}

// EnsureBuildings fetches the building list only when the cache is empty,
// so repeated client-side searches cost no server round trips.
func (b *Buildings) EnsureBuildings(ctx context.Context, sess Session) error {
	b.mu.Lock()
	cached := len(b.buildings) > 0
	b.mu.Unlock()
	if cached {
		return nil
	}
	_, err := b.ListBuildings(ctx, sess)
	return err
}

// SearchBuildings filters the cached building list by a case-insensitive
// substring match. No server round trip.
func (b *Buildings) SearchBuildings(query string) []Building {
	b.mu.Lock()
	defer b.mu.Unlock()

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return b.buildings
	}
	var matched []Building
	for _, building := range b.buildings {
		if strings.Contains(strings.ToLower(building.Name), query) {
			matched = append(matched, building)
		}
	}
	return matched
}

// ListDevices returns the device list for a building. Results are cached
// per building when no search filter is active; a search bypasses and
// invalidates the cache.
func (b *Buildings) ListDevices(ctx context.Context, sess Session, buildingID, limit int, search string) ([]Device, error) {
	if search == "" {
		b.mu.Lock()
		cached, ok := b.devices[buildingID]
		b.mu.Unlock()
		if ok {
			return cached, nil
		}
	}

	devices, err := b.Client.FetchDevices(ctx, sess, buildingID, limit, search)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	if search == "" {
		b.devices[buildingID] = devices
	} else {
		delete(b.devices, buildingID)
	}
	b.mu.Unlock()
	return devices, nil
}

// InvalidateDevices drops the cached device list for a building, e.g. on
// collapse.
func (b *Buildings) InvalidateDevices(buildingID int) {
	b.mu.Lock()
	delete(b.devices, buildingID)
	b.mu.Unlock()
}

// UpdateSchedule validates the start time client-side, pushes it to the
// server, and updates the cached building list only after the server
// confirms.
func (b *Buildings) UpdateSchedule(ctx context.Context, sess Session, buildingID int, startTime string) error {
	startTime = strings.TrimSpace(startTime)
	if startTime == "" {
		return errors.New("start time is required")
	}
	if !startTimeRe.MatchString(startTime) {
		return errors.New("start time must be in HH:MM format")
	}

	if err := b.Client.PostSchedule(ctx, sess, buildingID, startTime); err != nil {
		return err
	}

	b.mu.Lock()
	for i := range b.buildings {
		if b.buildings[i].ID == buildingID {
			b.buildings[i].StartTime = startTime
		}
	}
	b.mu.Unlock()
	return nil
}

// SaveIgnoreEdits performs the two-stage ignore update: a bulk save
// followed by a reevaluate. The reevaluate is attempted only when the save
// succeeded, and each stage fails with its own StageError.
//
// An empty edit list drawn from a non-empty source short-circuits with
// ErrNoChanges before any network call.
func (b *Buildings) SaveIgnoreEdits(ctx context.Context, sess Session, buildingID int, edits []IgnoreEdit, sourceCount int) (*ReevaluateResult, error) {
	if len(edits) == 0 && sourceCount > 0 {
		return nil, ErrNoChanges
	}
	if len(edits) == 0 {
		return nil, ErrNoChanges
	}

	if err := b.Client.PostBulkIgnore(ctx, sess, edits); err != nil {
		return nil, &StageError{Stage: StageSave, Err: err}
	}

	// Saved flags invalidate the cached device list.
	b.InvalidateDevices(buildingID)

	result, err := b.Client.PostReevaluate(ctx, sess, buildingID)
	if err != nil {
		return nil, &StageError{Stage: StageApply, Err: err}
	}
	return result, nil
}
