package reminder

import (
	"time"

	"github.com/EanHD/homework-app/internal/model"
)

// OffsetKind says where a scheduling decision's lead time comes from. The
// same optional field on an assignment means different things on the local
// and remote paths, so the resolution is made explicit here instead of being
// re-derived ad hoc at each call site.
type OffsetKind int

const (
	// OffsetExplicit uses the assignment's own remind_at_minutes.
	OffsetExplicit OffsetKind = iota
	// OffsetDefault falls back to the global reminder offset.
	OffsetDefault
	// OffsetNone means no reminder at all on this path.
	OffsetNone
)

// Offset is the resolved effective lead time for one scheduling decision.
type Offset struct {
	Kind    OffsetKind
	Minutes int
}

// ResolveLocalOffset picks the lead time the in-process scheduler uses: the
// assignment's own offset when set, otherwise the global default. The local
// path always has an offset.
func ResolveLocalOffset(a model.Assignment, settings model.ReminderSettings) Offset {
	if a.RemindAtMinutes != nil {
		return Offset{Kind: OffsetExplicit, Minutes: *a.RemindAtMinutes}
	}
	return Offset{Kind: OffsetDefault, Minutes: settings.ReminderOffset}
}

// ResolveRemoteOffset picks the lead time for the durable server-side row.
// An assignment without its own offset gets no server reminder: the global
// default deliberately does not apply on this path, so only explicitly
// requested reminders survive the tab closing.
func ResolveRemoteOffset(a model.Assignment) Offset {
	if a.RemindAtMinutes != nil {
		return Offset{Kind: OffsetExplicit, Minutes: *a.RemindAtMinutes}
	}
	return Offset{Kind: OffsetNone}
}

// FireTime computes the absolute moment a reminder should fire: the due time
// minus the offset, clamped so it never precedes the epoch.
func FireTime(dueAt time.Time, off Offset) time.Time {
	fire := dueAt.Add(-time.Duration(off.Minutes) * time.Minute)
	if fire.Unix() < 0 {
		return time.Unix(0, 0)
	}
	return fire
}
