package admin

// Fixed plain-text error bodies.
const (
	msgLogNotFound    = "Log not found"
	msgInvalidMock    = "Invalid request body. Route, path or method required"
	msgInvalidStatus  = "Invalid request body. Status must be between 100 and 999"
	msgMockCreated    = "Mock created"
	msgLogsCleared    = "Logs cleared"
	msgMocksCleared   = "Mocks cleared"
	errCodeInvalidArg = "invalid_argument"
)
