package world

import "errors"

var (
	ErrMapNotFound  = errors.New("map not found")
	ErrUnknownToken = errors.New("unknown token")
	ErrDuplicateID  = errors.New("duplicate id")
	ErrInvalidName  = errors.New("invalid player name")
	ErrRoadNotFound = errors.New("road not found")
	ErrNoRoads      = errors.New("map has no roads")
)
