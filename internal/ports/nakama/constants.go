package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create an open match.
	RpcQuickMatch = "quick_match"
	// RpcAnalyze runs the engine on a posted position without a match.
	RpcAnalyze = "analyze"
	// RpcSaveGame stores the caller's position and returns a resume token.
	RpcSaveGame = "save_game"
	// RpcResumeGame creates a match that continues a saved position.
	RpcResumeGame = "resume_game"

	// MatchNameMorris is the authoritative match handler name registered with Nakama.
	MatchNameMorris = "morris_match"

	// GameLabel is the label value matchmaking filters on.
	GameLabel = "morris"
)

// Label keys.
const (
	LabelKeyGame  = "game"
	LabelKeyOpen  = "open"
	LabelKeyPhase = "phase"
)

// Data files read at module init, relative to the Nakama working directory.
const (
	engineConfigPath   = "data/engine_config.json"
	botIdentitiesPath  = "data/bot_identities.json"
	resumeSnapshotKey  = "snapshot"
	ratingWalletKey    = "rating"
	gameStoreKey       = "unfinished"
	gameStoreColl      = "morris_games"
	onboardingColl     = "onboarding"
	startingRatingKey  = "starting_rating_v1"
	matchAutoFillTicks = 5
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpPlayMove       int64 = 1
	OpResign         int64 = 2
	OpRequestNewGame int64 = 3

	// Server -> Client events
	OpPlayerJoined int64 = 101
	OpPlayerLeft   int64 = 102
	OpGameStarted  int64 = 103
	OpMovePlayed   int64 = 104
	OpGameEnded    int64 = 105
	OpGameError    int64 = 106
	OpMatchState   int64 = 107
)
