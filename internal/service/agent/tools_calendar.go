package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
)

// DefaultMeetingMinutes is the duration used when none is given.
const DefaultMeetingMinutes = 60

// Meeting is the result of schedule_meeting.
type Meeting struct {
	Success         bool     `json:"success"`
	Message         string   `json:"message"`
	MeetingID       string   `json:"meeting_id"`
	Title           string   `json:"title"`
	Attendees       []string `json:"attendees"`
	StartTime       string   `json:"start_time"`
	EndTime         string   `json:"end_time"`
	DurationMinutes int      `json:"duration_minutes"`
	Description     string   `json:"description"`
}

// Availability is the result of check_calendar_conflicts.
type Availability struct {
	Date           string   `json:"date"`
	HasConflicts   bool     `json:"has_conflicts"`
	Conflicts      []string `json:"conflicts"`
	AvailableSlots []string `json:"available_slots"`
}

// Cancellation is the result of cancel_meeting.
type Cancellation struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	MeetingID string `json:"meeting_id"`
	Reason    string `json:"reason"`
}

// Reschedule is the result of reschedule_meeting.
type Reschedule struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	MeetingID         string `json:"meeting_id"`
	NewStartTime      string `json:"new_start_time"`
	AttendeesNotified bool   `json:"attendees_notified"`
}

// CalendarTools is a mock calendar: nothing is persisted.
type CalendarTools struct {
	now   func() time.Time
	newID func() string
}

// NewCalendarTools returns the mock calendar toolset.
func NewCalendarTools() *CalendarTools {
	return &CalendarTools{now: time.Now, newID: uuid.NewString}
}

var isoLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"}

func parseISO(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, l := range isoLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Schedule books a meeting. A start time that is not ISO 8601 falls back to
// one day from now.
func (c *CalendarTools) Schedule(title string, attendees []string, start string, minutes int, description string) Meeting {
	if minutes <= 0 {
		minutes = DefaultMeetingMinutes
	}
	st, ok := parseISO(start)
	if !ok {
		st = c.now().Add(24 * time.Hour)
	}
	if attendees == nil {
		attendees = []string{}
	}
	return Meeting{
		Success:         true,
		Message:         fmt.Sprintf("Meeting '%s' scheduled successfully", title),
		MeetingID:       c.newID(),
		Title:           title,
		Attendees:       attendees,
		StartTime:       st.Format(time.RFC3339),
		EndTime:         st.Add(time.Duration(minutes) * time.Minute).Format(time.RFC3339),
		DurationMinutes: minutes,
		Description:     description,
	}
}

// CheckConflicts always reports a free day with four standard slots.
func (c *CalendarTools) CheckConflicts(date string) Availability {
	return Availability{
		Date:           date,
		HasConflicts:   false,
		Conflicts:      []string{},
		AvailableSlots: []string{"09:00-10:00", "10:00-11:00", "14:00-15:00", "15:00-16:00"},
	}
}

// Cancel cancels a meeting by id.
func (c *CalendarTools) Cancel(meetingID, reason string) Cancellation {
	return Cancellation{
		Success:   true,
		Message:   fmt.Sprintf("Meeting %s cancelled successfully", meetingID),
		MeetingID: meetingID,
		Reason:    reason,
	}
}

// Reschedule moves a meeting to newStart.
func (c *CalendarTools) Reschedule(meetingID, newStart string, notify bool) Reschedule {
	return Reschedule{
		Success:           true,
		Message:           "Meeting rescheduled to " + newStart,
		MeetingID:         meetingID,
		NewStartTime:      newStart,
		AttendeesNotified: notify,
	}
}

// Tools exposes the calendar capabilities to the registry.
func (c *CalendarTools) Tools() []Tool {
	return []Tool{
		{
			Name:        domain.ToolScheduleMeeting,
			Group:       GroupCalendar,
			Description: "Schedules a meeting on the calendar. Input: {title, attendees (comma separated), start_time (ISO), duration_minutes, description}",
			PrimaryArg:  "title",
			Handler: func(_ context.Context, args map[string]any) (any, error) {
				return c.Schedule(
					argString(args, "title", ""),
					argList(args, "attendees"),
					argString(args, "start_time", ""),
					argInt(args, "duration_minutes", DefaultMeetingMinutes),
					argString(args, "description", "")), nil
			},
		},
		{
			Name:        domain.ToolCheckCalendarConflicts,
			Group:       GroupCalendar,
			Description: "Checks for scheduling conflicts on a specific date. Input: date (YYYY-MM-DD)",
			PrimaryArg:  "date",
			Handler: func(_ context.Context, args map[string]any) (any, error) {
				return c.CheckConflicts(argString(args, "date", "")), nil
			},
		},
		{
			Name:        domain.ToolCancelMeeting,
			Group:       GroupCalendar,
			Description: "Cancels a scheduled meeting. Input: {meeting_id, reason}",
			PrimaryArg:  "meeting_id",
			Handler: func(_ context.Context, args map[string]any) (any, error) {
				id := argString(args, "meeting_id", "")
				if id == "" {
					return nil, fmt.Errorf("%w: meeting_id is required", domain.ErrInvalidArgument)
				}
				return c.Cancel(id, argString(args, "reason", "")), nil
			},
		},
		{
			Name:        domain.ToolRescheduleMeeting,
			Group:       GroupCalendar,
			Description: "Reschedules an existing meeting to a new time. Input: {meeting_id, new_start_time (ISO), notify_attendees}",
			PrimaryArg:  "meeting_id",
			Handler: func(_ context.Context, args map[string]any) (any, error) {
				id := argString(args, "meeting_id", "")
				if id == "" {
					return nil, fmt.Errorf("%w: meeting_id is required", domain.ErrInvalidArgument)
				}
				return c.Reschedule(id, argString(args, "new_start_time", ""), argBool(args, "notify_attendees", true)), nil
			},
		},
	}
}
