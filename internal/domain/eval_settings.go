package domain

import "errors"

// EvalSettings holds the weights used by Board.Evaluate.
type EvalSettings struct {
	MillFormable        int `json:"mill_formable"`
	MillFormed          int `json:"mill_formed"`
	MillBlocked         int `json:"mill_blocked"`
	MillOpponent        int `json:"mill_opponent"`
	CapturedPiece       int `json:"captured_piece"`
	LostPiece           int `json:"lost_piece"`
	AdjacentSpot        int `json:"adjacent_spot"`
	BlockedOpponentSpot int `json:"blocked_opponent_spot"`
	WorstScore          int `json:"worst_score"`
	BestScore           int `json:"best_score"`
}

// DefaultEvalSettings returns the stock weights.
func DefaultEvalSettings() EvalSettings {
	return EvalSettings{
		MillFormable:        50,
		MillFormed:          70,
		MillBlocked:         60,
		MillOpponent:        -80,
		CapturedPiece:       70,
		LostPiece:           -110,
		AdjacentSpot:        2,
		BlockedOpponentSpot: 2,
		WorstScore:          -10000,
		BestScore:           10000,
	}
}

var ErrScoreWindow = errors.New("best score must be greater than worst score")

// Validate checks that the sentinel scores form a usable search window.
func (s EvalSettings) Validate() error {
	if s.BestScore <= s.WorstScore {
		return ErrScoreWindow
	}
	return nil
}
