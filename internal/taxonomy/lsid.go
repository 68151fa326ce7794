package taxonomy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidLSID marks a scientificNameID that is not a WoRMS taxname LSID.
var ErrInvalidLSID = errors.New("invalid lsid")

const lsidPrefix = "urn:lsid:marinespecies.org:taxname:"

// ParseLSID extracts the AphiaID from a WoRMS LSID of the form
// urn:lsid:marinespecies.org:taxname:<integer>. Surrounding whitespace is
// tolerated; any other scheme or authority is rejected.
func ParseLSID(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(strings.ToLower(value), lsidPrefix) {
		return 0, fmt.Errorf("%w: %q is not a marinespecies.org taxname urn", ErrInvalidLSID, value)
	}
	key := strings.TrimSpace(value[len(lsidPrefix):])
	id, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: non-numeric taxon key %q", ErrInvalidLSID, key)
	}
	if id <= 0 {
		return 0, fmt.Errorf("%w: taxon key %d out of range", ErrInvalidLSID, id)
	}
	return id, nil
}
