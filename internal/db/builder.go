package db

// IndexBuilder assembles an IndexDefinition field by field.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts a definition named name.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name}}
}

// Prefix restricts the index to keys starting with the given prefixes.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// Tag adds single-valued tag fields.
func (b *IndexBuilder) Tag(names ...string) *IndexBuilder {
	for _, n := range names {
		b.def.Fields = append(b.def.Fields, IndexField{Name: n, Type: IndexFieldTag})
	}
	return b
}

// TagList adds a multi-valued, case-insensitive tag field split on sep.
func (b *IndexBuilder) TagList(name, sep string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{Name: name, Type: IndexFieldTag, TagSeparator: sep})
	return b
}

// Numeric adds range-filterable fields.
func (b *IndexBuilder) Numeric(names ...string) *IndexBuilder {
	for _, n := range names {
		b.def.Fields = append(b.def.Fields, IndexField{Name: n, Type: IndexFieldNumeric})
	}
	return b
}

// SortableNumeric adds a numeric field results can be ordered by.
func (b *IndexBuilder) SortableNumeric(name string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{Name: name, Type: IndexFieldNumeric, Sortable: true})
	return b
}

// Build validates the definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	def := b.def
	return &def, nil
}

// MustBuild is Build for definitions fixed at compile time.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic("db: invalid index " + b.def.Name + ": " + err.Error())
	}
	return def
}
