package main

import (
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
)

// idArg returns the uuid given as the command's "id" argument.
func idArg(cmd *cli.Command) (uuid.UUID, error) {
	raw := cmd.StringArg("id")
	if raw == "" {
		return uuid.Nil, usageErrorf("missing ID argument")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, usageErrorf("invalid ID %q: %v", raw, err)
	}
	return id, nil
}

func parseIDs(flag string, raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, usageErrorf("invalid --%s value %q: %v", flag, s, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseDeadline(raw string) (time.Time, error) {
	deadline, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, usageErrorf("invalid --deadline %q, expected RFC3339: %v", raw, err)
	}
	return deadline.UTC(), nil
}

// ownerFlag parses --assign into a NullUUID; an empty value means unassigned.
func ownerFlag(cmd *cli.Command) (uuid.NullUUID, error) {
	raw := cmd.String("assign")
	if raw == "" {
		return uuid.NullUUID{}, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.NullUUID{}, usageErrorf("invalid --assign value %q: %v", raw, err)
	}
	return uuid.NullUUID{UUID: id, Valid: true}, nil
}
