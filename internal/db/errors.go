package db

import "errors"

// Sentinel errors.
var (
	ErrIndexNotFound = errors.New("db: index not found")
	ErrIndexExists   = errors.New("db: index already exists")
)

// Command names reported in Error.Op.
const (
	OpCreateIndex = "FT.CREATE"
	OpIndexInfo   = "FT.INFO"
	OpSearch      = "FT.SEARCH"
	OpDel         = "DEL"
	OpExists      = "EXISTS"
	OpExpire      = "EXPIRE"
	OpHDel        = "HDEL"
	OpHGetAll     = "HGETALL"
	OpHSet        = "HSET"
	OpIncrBy      = "INCRBY"
	OpScan        = "SCAN"
	OpSet         = "SET"
)

// Error is a failed store command.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Key + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }
