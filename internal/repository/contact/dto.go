package contact

import (
	"fmt"
	"strconv"

	domcontact "github.com/kailas-cloud/agenda/internal/domain/contact"
	"github.com/kailas-cloud/agenda/internal/domain/search/query"
)

// optionalFields are dropped from the hash when a contact no longer has them,
// so an update never leaves a stale slug, category or location indexed.
var optionalFields = []string{
	domcontact.FieldPhone,
	domcontact.FieldCategoryID,
	domcontact.FieldSlug,
	domcontact.FieldPhotoURL,
	domcontact.FieldLatitude,
	domcontact.FieldLongitude,
	"address.street",
	"address.number",
	"address.complement",
	"address.neighborhood",
	"address.city",
	"address.state",
	"address.zipCode",
	"address.country",
	"address.latitude",
	"address.longitude",
}

// staleFields returns the optional fields absent from fields.
func staleFields(fields map[string]string) []string {
	var out []string
	for _, f := range optionalFields {
		if _, ok := fields[f]; !ok {
			out = append(out, f)
		}
	}
	return out
}

// snapshotFromHash builds a query snapshot, taking the cursor value from orderField.
func snapshotFromHash(id string, fields map[string]string, orderField string) (query.Snapshot, error) {
	snap := query.Snapshot{ID: id, Fields: fields, Cursor: query.Cursor{ID: id}}
	if orderField == "" {
		return snap, nil
	}
	raw, ok := fields[orderField]
	if !ok {
		return query.Snapshot{}, fmt.Errorf("contact %s: missing order field %s", id, orderField)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return query.Snapshot{}, fmt.Errorf("contact %s: order field %s: %w", id, orderField, err)
	}
	snap.Cursor.Value = v
	return snap, nil
}
