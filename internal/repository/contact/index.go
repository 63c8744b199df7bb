package contact

import (
	"github.com/kailas-cloud/agenda/internal/db"
	domcontact "github.com/kailas-cloud/agenda/internal/domain/contact"
)

// buildIndex describes the index over contact hashes. Only the fields the
// search engine and the uniqueness checks filter on are indexed.
func buildIndex(k keys) *db.IndexDefinition {
	return db.NewIndex(k.index()).
		Prefix(k.contactPrefix()).
		Tag(
			domcontact.FieldPublic,
			domcontact.FieldOwnerID,
			domcontact.FieldCategoryID,
			domcontact.FieldSlug,
			domcontact.FieldEmail,
			domcontact.FieldFavorite,
		).
		TagList(domcontact.FieldKeywords, domcontact.KeywordSeparator).
		Numeric(domcontact.FieldLatitude, domcontact.FieldLongitude).
		SortableNumeric(domcontact.FieldCreatedAt).
		MustBuild()
}
