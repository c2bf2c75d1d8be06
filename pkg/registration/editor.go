package registration

// RowEditor exposes one mutator per row attribute. Each call delegates to
// Store.SetRowField and therefore yields a fresh snapshot.
type RowEditor struct {
	store *Store
}

// NewRowEditor binds an editor to store.
func NewRowEditor(store *Store) RowEditor {
	return RowEditor{store: store}
}

func (e RowEditor) SetCourseName(row int, value string) {
	e.store.SetRowField(row, FieldCourseName, value)
}

func (e RowEditor) SetDate(row int, value string) {
	e.store.SetRowField(row, FieldDate, value)
}

func (e RowEditor) SetCredits(row int, value string) {
	e.store.SetRowField(row, FieldCredits, value)
}

func (e RowEditor) SetInstructor(row int, value string) {
	e.store.SetRowField(row, FieldInstructor, value)
}

// AppendRow adds a blank row through the underlying store.
func (e RowEditor) AppendRow() {
	e.store.AppendRow()
}
