package model

import "time"

// EventSource records how a plan event came into existence.
type EventSource string

const (
	SourceManual   EventSource = "manual"
	SourceAutoplan EventSource = "autoplan"
)

// PlanEvent is a committed block of work on the calendar. StartDate and
// EndDate are equal for single-day events. TotalMinutes and TravelMinutes
// are never negative.
type PlanEvent struct {
	ID            string      `json:"id"`
	Kind          Kind        `json:"kind"`
	OrderID       string      `json:"orderId"`
	StartDate     Date        `json:"startDate"`
	EndDate       Date        `json:"endDate"`
	TotalMinutes  int         `json:"totalMinutes"`
	TravelMinutes int         `json:"travelMinutes"`
	Source        EventSource `json:"source"`
	EmployeeIDs   []string    `json:"employeeIds"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// Overlaps reports whether the event's [StartDate, EndDate] interval
// contains the given date.
func (e PlanEvent) Overlaps(date Date) bool {
	return !e.StartDate.After(date) && !e.EndDate.Before(date)
}

// EventInput carries the fields needed to create or update a plan event.
type EventInput struct {
	ID            string      `json:"id,omitempty"`
	Kind          Kind        `json:"kind"`
	OrderID       string      `json:"orderId"`
	StartDate     Date        `json:"startDate"`
	EndDate       Date        `json:"endDate"`
	TotalMinutes  int         `json:"totalMinutes"`
	TravelMinutes int         `json:"travelMinutes"`
	EmployeeIDs   []string    `json:"employeeIds"`
	Source        EventSource `json:"source"`
}
