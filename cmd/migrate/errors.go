package main

import "errors"

var (
	errCreateNeedsDir  = errors.New("create needs MIGRATIONS_DIR pointing at the source migrations directory")
	errCreateNeedsName = errors.New("name is required for 'create' command")
	errUnknownCommand  = errors.New("unknown command, use: up, down, status, version, create")
)
