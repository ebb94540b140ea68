package seating

import (
	"wedly/internal/guests"

	"github.com/google/uuid"
)

// firstFitPass runs the greedy placement over one capacity snapshot.
// Candidates arrive in creation order and resources in their configured sort
// order; each guest takes the first resource with remaining capacity whose
// allow-list admits their type. The snapshot is decremented in memory, never
// re-queried, so the pass stays consistent within a single run. This is a
// deliberate first-fit heuristic, not optimal packing.
func firstFitPass(resources []SeatingResource, occupied map[uuid.UUID]int, candidates []guests.Guest) (plan []PlannedAssignment, outcomes []GuestOutcome) {
	remaining := make(map[uuid.UUID]int, len(resources))
	for i := range resources {
		remaining[resources[i].ID] = resources[i].Capacity - occupied[resources[i].ID]
	}

	outcomes = make([]GuestOutcome, 0, len(candidates))
	for gi := range candidates {
		guest := &candidates[gi]
		outcome := GuestOutcome{
			GuestID:   guest.ID.String(),
			GuestName: guest.Name,
		}

		typeAdmitted := false
		for ri := range resources {
			resource := &resources[ri]
			if !resource.Allows(guest.GuestType) {
				continue
			}
			typeAdmitted = true
			if remaining[resource.ID] <= 0 {
				continue
			}

			remaining[resource.ID]--
			plan = append(plan, PlannedAssignment{GuestID: guest.ID, ResourceID: resource.ID})
			outcome.Assigned = true
			outcome.ResourceID = resource.ID.String()
			outcome.ResourceName = resource.Name
			break
		}

		if !outcome.Assigned {
			if typeAdmitted {
				outcome.Reason = ReasonNoCapacity
			} else {
				outcome.Reason = ReasonTypeNotAllowed
			}
		}
		outcomes = append(outcomes, outcome)
	}

	return plan, outcomes
}
