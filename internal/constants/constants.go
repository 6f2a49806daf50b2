package constants

// Centralized constants for env keys, routes and shared strings.
const (
	// Environment variable keys
	EnvConfigPath = "WARHEX_CONFIG"
	EnvDBPath     = "WARHEX_DB"
)

// Routes used by the backend router
const (
	RouteAPIPrefix    = "/api"
	RouteVersion      = "/version"
	RouteBattles      = "/battles"
	RouteBattleByID   = "/battles/:battleID"
	RouteBattleStep   = "/battles/:battleID/step"
	RouteBattleEvents = "/battles/:battleID/events"
	RouteBattleUndo   = "/battles/:battleID/undo"
	RouteBattleRun    = "/battles/:battleID/run"
	RouteBattleStream = "/battles/:battleID/stream"
	RouteRecords      = "/records"
	RouteRecordByID   = "/records/:recordID"
	RouteRecordReplay = "/records/:recordID/replay"
)

// Common JSON response keys
const (
	JSONKeyError = "error"
)

// Common error messages used across API handlers
const (
	ErrInvalidRequest    = "Invalid request"
	ErrInvalidBattleID   = "Invalid battle ID"
	ErrBattleNotFound    = "Battle not found"
	ErrInvalidRecordID   = "Invalid record ID"
	ErrRecordNotFound    = "Record not found"
	ErrFailedListRecords = "Failed to fetch records"
	ErrReplayFailed      = "Replay verification failed"
	ErrBattleFinished    = "Battle already finished"
	ErrNothingToUndo     = "Nothing to undo"
)

// Logging field names
const (
	LogFieldBattleID = "battle_id"
	LogFieldRecordID = "record_id"
	LogFieldSeed     = "seed"
	LogFieldWinner   = "winner"
	LogFieldRounds   = "rounds"
	LogFieldAddr     = "addr"
)
