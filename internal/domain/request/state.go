package request

import "github.com/google/uuid"

// EvaluateDetailState derives a detail's state from its recorded values.
// These rules live here and nowhere else.
//
//   - No values and no legacy free-text result: pendiente.
//   - Every required resolved field has a value: completado. When the exam
//     defines no required fields, any value completes the detail.
//   - A legacy free-text result completes a detail whose exam has no fields.
//   - Anything in between: en_proceso.
func EvaluateDetailState(requiredFields []uuid.UUID, totalFields int, valued map[uuid.UUID]bool, hasLegacyResult bool) string {
	if totalFields == 0 {
		if hasLegacyResult {
			return StateCompleted
		}
		return StatePending
	}

	if len(valued) == 0 {
		if hasLegacyResult {
			return StateInProgress
		}
		return StatePending
	}

	if len(requiredFields) == 0 {
		return StateCompleted
	}
	for _, id := range requiredFields {
		if !valued[id] {
			return StateInProgress
		}
	}
	return StateCompleted
}

// EvaluateRequestState derives a request's state from its detail states:
// completado when every detail is completado, pendiente when every detail is
// pendiente, en_proceso otherwise. A request with no details is pendiente.
func EvaluateRequestState(detailStates []string) string {
	if len(detailStates) == 0 {
		return StatePending
	}
	allCompleted := true
	allPending := true
	for _, s := range detailStates {
		if s != StateCompleted {
			allCompleted = false
		}
		if s != StatePending {
			allPending = false
		}
	}
	switch {
	case allCompleted:
		return StateCompleted
	case allPending:
		return StatePending
	default:
		return StateInProgress
	}
}
