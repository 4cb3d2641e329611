package gtid

import (
	"strconv"
	"strings"
)

// ParseOne decodes a single "D-S-Q" textual GTID.
func ParseOne(s string) (ID, error) {
	trimmed := strings.TrimSpace(s)
	parts := strings.Split(trimmed, "-")
	if len(parts) != 3 {
		return ID{}, &MalformedError{Input: s, Pos: 0, Cause: "expected D-S-Q"}
	}

	domain, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return ID{}, &MalformedError{Input: s, Pos: 0, Cause: "bad domain: " + err.Error()}
	}

	server, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return ID{}, &MalformedError{Input: s, Pos: len(parts[0]) + 1, Cause: "bad server: " + err.Error()}
	}

	seq, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return ID{}, &MalformedError{Input: s, Pos: len(parts[0]) + len(parts[1]) + 2, Cause: "bad seq: " + err.Error()}
	}

	return ID{Domain: uint32(domain), Server: uint32(server), Seq: seq}, nil
}

// Parse decodes a comma-separated textual GTID list. An empty (possibly
// all-whitespace) input decodes to an empty, non-nil list. Whitespace
// around commas is tolerated. Domain-uniqueness is NOT enforced here; call
// RequireUniqueDomains on the result when the caller needs it (the slave
// connection state request and the primary snapshot do).
func Parse(s string) (List, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return List{}, nil
	}

	rawItems := strings.Split(trimmed, ",")
	out := make(List, 0, len(rawItems))
	for _, item := range rawItems {
		g, err := ParseOne(item)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}

	return out, nil
}

// RequireUniqueDomains decodes s the same way Parse does, additionally
// rejecting a list that names the same domain twice.
func RequireUniqueDomains(s string) (List, error) {
	list, err := Parse(s)
	if err != nil {
		return nil, err
	}
	if domain, dup := list.HasDuplicateDomain(); dup {
		return nil, &DuplicateDomainError{Domain: domain}
	}
	return list, nil
}
