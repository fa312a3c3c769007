package store

// Families are key prefixes inside one Pebble keyspace. Pebble orders keys
// bytewise, so entries of one family are contiguous and sorted by their
// unprefixed key.
//
// Layout:
// - raw/{key}                  (exact bytes received for key)
// - tcin_version_status/{key}  (canonical StatusProjection bytes)

const (
	RawFamily        = "raw"
	ProjectionFamily = "tcin_version_status"
)

var (
	rawPrefix        = []byte(RawFamily + "/")
	projectionPrefix = []byte(ProjectionFamily + "/")
)

func familyKey(prefix, key []byte) []byte {
	k := make([]byte, 0, len(prefix)+len(key))
	k = append(k, prefix...)
	k = append(k, key...)
	return k
}

// familyBounds returns [lower, upper) covering every key under prefix.
func familyBounds(prefix []byte) (lower, upper []byte) {
	lower = append([]byte(nil), prefix...)
	upper = append([]byte(nil), prefix...)
	upper[len(upper)-1]++
	return lower, upper
}
