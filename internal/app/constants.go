package app

import "time"

// Session defaults mirror the medium bot level.
const (
	DefaultSessionDepth     = 3
	DefaultSessionTimeLimit = 200 * time.Millisecond

	// maxListedMoves bounds the output of the moves command.
	maxListedMoves = 40
)

const helpText = `Commands:
  new ai|pvp              start a new game
  set depth <n>           set AI search depth (ai mode)
  set time <ms>           set AI time limit in ms (ai mode)
  moves                   list legal moves (compact)
  drop <POS> [cap <POS>]  place a piece
  move <A> <B> [cap <C>]  move a piece
  board                   show the board
  quit                    exit
Notes:
  You can also omit 'cap': drop A1 C3, move A1 D1 B2`
