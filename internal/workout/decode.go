package workout

import (
	"encoding/json"

	"github.com/claude/liftlog/internal/apperr"
)

// DecodeMutation reads a mutation from JSON of the form {"type": "<name>", ...fields}.
func DecodeMutation(data []byte) (Mutation, error) {
	const op = "decode mutation"
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, apperr.Validation(op, "invalid JSON: %v", err)
	}

	var (
		m   Mutation
		err error
	)
	switch env.Type {
	case UpdateSet{}.Name():
		m, err = decodeAs[UpdateSet](data)
	case ToggleSetComplete{}.Name():
		m, err = decodeAs[ToggleSetComplete](data)
	case AddSet{}.Name():
		m, err = decodeAs[AddSet](data)
	case AddWarmupSet{}.Name():
		m, err = decodeAs[AddWarmupSet](data)
	case RemoveSet{}.Name():
		m, err = decodeAs[RemoveSet](data)
	case SetExerciseNote{}.Name():
		m, err = decodeAs[SetExerciseNote](data)
	case SetStickyNote{}.Name():
		m, err = decodeAs[SetStickyNote](data)
	case SetRestTime{}.Name():
		m, err = decodeAs[SetRestTime](data)
	case UpdateRestTimers{}.Name():
		m, err = decodeAs[UpdateRestTimers](data)
	case ReplaceExercise{}.Name():
		m, err = decodeAs[ReplaceExercise](data)
	case CreateSuperset{}.Name():
		m, err = decodeAs[CreateSuperset](data)
	case ChangeUnit{}.Name():
		m, err = decodeAs[ChangeUnit](data)
	case RemoveExercise{}.Name():
		m, err = decodeAs[RemoveExercise](data)
	case "":
		return nil, apperr.Validation(op, "mutation type is required")
	default:
		return nil, apperr.Validation(op, "unknown mutation type %q", env.Type)
	}
	if err != nil {
		return nil, apperr.Validation(op, "invalid fields for %s: %v", env.Type, err)
	}
	return m, nil
}

func decodeAs[T Mutation](data []byte) (Mutation, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
