package catalog

import (
	"bytes"
	"encoding/json"
	"strings"
)

// UnknownDictionary is the display name used when the catalog omits one.
const UnknownDictionary = "Unknown dictionary"

// Passport is the resolved latest-version descriptor for a dictionary.
// Immutable once produced.
type Passport struct {
	ShortName string
	Version   string
}

type passportRecord struct {
	ShortName string `json:"shortName"`
	Version   string `json:"version"`
}

// parsePassportPayload normalizes the catalog's passport response. The
// endpoint returns either an ordered sequence sorted by version descending,
// in which case the first element is the latest version, or a single object.
// The ambiguity stops here; callers only ever see a Passport.
func parsePassportPayload(data []byte) (Passport, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Passport{}, Wrap(ErrResolution, "passport", "parse", "empty response body", nil)
	}

	var record passportRecord
	if trimmed[0] == '[' {
		var records []passportRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return Passport{}, Wrap(ErrResolution, "passport", "parse", "malformed response", err)
		}
		if len(records) == 0 {
			return Passport{}, Wrap(ErrResolution, "passport", "parse", "empty version list", nil)
		}
		record = records[0]
	} else {
		if err := json.Unmarshal(trimmed, &record); err != nil {
			return Passport{}, Wrap(ErrResolution, "passport", "parse", "malformed response", err)
		}
	}

	passport := Passport{
		ShortName: strings.TrimSpace(record.ShortName),
		Version:   strings.TrimSpace(record.Version),
	}
	if passport.ShortName == "" {
		passport.ShortName = UnknownDictionary
	}
	// A blank version would produce a nonsense download URL, so it is a
	// resolution failure rather than a deferred download failure.
	if passport.Version == "" {
		return Passport{}, Wrap(ErrResolution, "passport", "parse", "missing version", nil)
	}
	return passport, nil
}
