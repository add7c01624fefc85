package handlers

// HandlerBundle groups the assembled handlers for route registration.
type HandlerBundle struct {
	Todo     *TodoHandler
	Schedule *ScheduleHandler
}
