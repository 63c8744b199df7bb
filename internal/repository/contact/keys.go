package contact

import "strconv"

// DefaultKeyPrefix namespaces every key the repositories write.
const DefaultKeyPrefix = "agenda:"

// Key layout under a prefix p:
//
//	p contacts:{id}       contact hash
//	p contacts:idx        FT index over contact hashes
//	p contact_ts:{micros} createdAt reservation
type keys struct {
	prefix string
}

func (k keys) contact(id string) string { return k.prefix + "contacts:" + id }

func (k keys) contactPrefix() string { return k.prefix + "contacts:" }

func (k keys) index() string { return k.prefix + "contacts:idx" }

func (k keys) createdAt(micros int64) string {
	return k.prefix + "contact_ts:" + strconv.FormatInt(micros, 10)
}
