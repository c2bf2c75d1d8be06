package registration

// ReasonRequiredFieldsMissing is the only rejection reason the validator
// produces.
const ReasonRequiredFieldsMissing = "required fields missing"

// Result is the validator verdict. Missing lists the dotted paths of the
// empty fields in form order; it is informational and does not affect Valid.
type Result struct {
	Valid   bool     `json:"valid"`
	Reason  string   `json:"reason,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

// Err returns ErrIncompleteSubmission for invalid results and nil otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return ErrIncompleteSubmission
}

// Validate reports whether form can be submitted: name, email and every
// attribute of every row must be non-empty. Email shape and credits are not
// checked beyond presence.
func Validate(form Form) Result {
	var missing []string
	if form.Name == "" {
		missing = append(missing, FieldName.String())
	}
	if form.Email == "" {
		missing = append(missing, FieldEmail.String())
	}
	for i, row := range form.Rows {
		for _, field := range RowFields {
			if row.Value(field) == "" {
				missing = append(missing, RowPath(i, field))
			}
		}
	}

	if len(missing) > 0 {
		return Result{
			Reason:  ReasonRequiredFieldsMissing,
			Missing: missing,
		}
	}
	return Result{Valid: true}
}
