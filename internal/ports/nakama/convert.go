package nakama

import (
	"fmt"
	"strings"

	"morris/internal/app"
	"morris/internal/domain"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func snapshotToMap(s domain.Snapshot) map[string]interface{} {
	return map[string]interface{}{
		"turn":     s.Turn,
		"cells":    s.Cells,
		"placed":   []interface{}{s.Placed[0], s.Placed[1]},
		"unplaced": []interface{}{s.Unplaced[0], s.Unplaced[1]},
	}
}

// snapshotFromStruct reads a board written by snapshotToMap or by a client
// using the same shape.
func snapshotFromStruct(st *structpb.Struct) (domain.Snapshot, error) {
	if st == nil {
		return domain.Snapshot{}, fmt.Errorf("missing board")
	}
	f := st.GetFields()
	snap := domain.Snapshot{
		Turn:  f["turn"].GetStringValue(),
		Cells: f["cells"].GetStringValue(),
	}
	var err error
	if snap.Placed, err = pairFromValue(f["placed"]); err != nil {
		return domain.Snapshot{}, fmt.Errorf("placed: %w", err)
	}
	if snap.Unplaced, err = pairFromValue(f["unplaced"]); err != nil {
		return domain.Snapshot{}, fmt.Errorf("unplaced: %w", err)
	}
	return snap, nil
}

func pairFromValue(v *structpb.Value) ([2]int, error) {
	values := v.GetListValue().GetValues()
	if len(values) != 2 {
		return [2]int{}, fmt.Errorf("want 2 counts, got %d", len(values))
	}
	return [2]int{int(values[0].GetNumberValue()), int(values[1].GetNumberValue())}, nil
}

func colorName(p domain.Player) string {
	if p == domain.NoPlayer {
		return ""
	}
	return strings.ToLower(p.String())
}

// encodeEvent maps an app event to its op code and wire payload.
func encodeEvent(ev app.Event) (int64, []byte, error) {
	var opCode int64
	var fields map[string]interface{}

	switch p := ev.Payload.(type) {
	case app.PlayerJoinedPayload:
		opCode = OpPlayerJoined
		fields = map[string]interface{}{
			"user_id": p.UserID,
			"color":   colorName(p.Color),
			"is_bot":  p.IsBot,
		}
	case app.PlayerLeftPayload:
		opCode = OpPlayerLeft
		fields = map[string]interface{}{"user_id": p.UserID}
	case app.GameStartedPayload:
		opCode = OpGameStarted
		fields = map[string]interface{}{
			"phase":              string(p.Phase),
			"white_user_id":      p.WhiteUserID,
			"black_user_id":      p.BlackUserID,
			"first_turn_user_id": p.FirstTurnUserID,
			"board":              snapshotToMap(p.Board),
		}
	case app.MovePlayedPayload:
		opCode = OpMovePlayed
		fields = map[string]interface{}{
			"user_id":           p.UserID,
			"color":             colorName(p.Color),
			"move":              p.Move.String(),
			"next_turn_user_id": p.NextTurnUserID,
			"board":             snapshotToMap(p.Board),
		}
	case app.GameEndedPayload:
		opCode = OpGameEnded
		fields = map[string]interface{}{
			"winner":         colorName(p.Winner),
			"winner_user_id": p.WinnerUserID,
			"loser_user_id":  p.LoserUserID,
			"resigned":       p.Resigned,
			"plies":          p.Plies,
		}
	default:
		return 0, nil, fmt.Errorf("unknown event kind %v", ev.Kind)
	}

	st, err := structpb.NewStruct(fields)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build %v payload: %w", ev.Kind, err)
	}
	data, err := proto.Marshal(st)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal %v payload: %w", ev.Kind, err)
	}
	return opCode, data, nil
}

// decodeMove reads {"move": "drop D1"} from a client message.
func decodeMove(data []byte) (domain.Move, error) {
	st := &structpb.Struct{}
	if err := proto.Unmarshal(data, st); err != nil {
		return domain.Move{}, fmt.Errorf("invalid move request: %w", err)
	}
	text := st.GetFields()["move"].GetStringValue()
	if text == "" {
		return domain.Move{}, fmt.Errorf("invalid move request: missing move")
	}
	return domain.ParseMove(text)
}

func encodeError(code int, message string) ([]byte, error) {
	st, err := structpb.NewStruct(map[string]interface{}{
		"code":    code,
		"message": message,
	})
	if err != nil {
		return nil, err
	}
	return proto.Marshal(st)
}
