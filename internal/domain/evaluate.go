package domain

// Evaluate scores the position for the side to move. The formula depends on
// the stage of the whole game, not the mover's own stage.
func (b *Board) Evaluate(s EvalSettings) int {
	switch b.gameStage() {
	case StagePlacement:
		return b.evalPlacement(s)
	case StageSliding:
		return b.evalSliding(s)
	default:
		return b.evalFlying(s)
	}
}

// gameStage is placement while either side holds reserve pieces, flying
// once either side is down to three, and sliding otherwise.
func (b *Board) gameStage() Stage {
	switch {
	case b.unplaced[White] > 0 || b.unplaced[Black] > 0:
		return StagePlacement
	case b.placed[White] < 4 || b.placed[Black] < 4:
		return StageFlying
	default:
		return StageSliding
	}
}

func (b *Board) evalPlacement(s EvalSettings) int {
	me, opp := b.turn, b.turn.Opponent()

	score := s.MillBlocked * b.CountMills(me, opp)
	for i, occupant := range b.cells {
		if occupant == me {
			score += s.AdjacentSpot * Point(i).Degree()
		}
	}
	score += s.CapturedPiece * b.lost(opp)
	score += s.LostPiece * b.lost(me)
	score += s.MillOpponent * b.CountMills(opp, opp)
	return score
}

func (b *Board) evalSliding(s EvalSettings) int {
	me, opp := b.turn, b.turn.Opponent()
	if b.HasWon(opp) {
		return s.WorstScore
	}
	if b.HasWon(me) {
		return s.BestScore
	}

	score := s.CapturedPiece * b.lost(opp)
	score += s.LostPiece * b.lost(me)
	score += s.MillFormable * b.CountMills(NoPlayer, me)
	score += s.MillFormed * b.CountMills(me, me)
	score += s.MillOpponent * b.CountMills(opp, opp)
	for i, occupant := range b.cells {
		if occupant == opp && !b.hasEmptyNeighbor(Point(i)) {
			score += s.BlockedOpponentSpot
		}
	}
	return score
}

func (b *Board) evalFlying(s EvalSettings) int {
	me, opp := b.turn, b.turn.Opponent()
	if b.HasWon(opp) {
		return s.WorstScore
	}

	score := s.CapturedPiece * b.lost(opp)
	score += s.MillFormable * b.CountMills(NoPlayer, me)
	score += s.MillBlocked * b.CountMills(me, opp)
	return score
}
