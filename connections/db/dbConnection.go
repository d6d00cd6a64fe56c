package db

import (
	"github.com/Mause/tuya-graphing/connections"
)

// The run ledger. Holds one row per export run and the log lines it produced.
type DBConnection interface {
	connections.Connection
	Jobs() JobStore
	Logs() LogStore
}
