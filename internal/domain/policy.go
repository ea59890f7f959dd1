package domain

// Capacity and promotion rules. The repository applies these inside the
// registration/cancellation transaction while holding the event row lock, so
// the counts it passes in cannot move underneath the decision.

// InitialStatus decides the status of a new registration. A nil capacity means
// unlimited and always yields an active registration.
func InitialStatus(capacity *int, activeCount int) RegistrationStatus {
	if capacity == nil || activeCount < *capacity {
		return StatusActive
	}
	return StatusQueued
}

// PromotableCount is the number of queued registrations to promote after an
// active slot freed up. Zero when capacity is unlimited: nothing ever queued.
func PromotableCount(capacity *int, activeCount, queuedCount int) int {
	if capacity == nil {
		return 0
	}
	available := *capacity - activeCount
	if available <= 0 {
		return 0
	}
	if queuedCount < available {
		return queuedCount
	}
	return available
}
