// Package formutil provides helpers for re-rendering a form after a
// failed submission: the visitor's values are echoed back along with an
// inline message and per-field errors.
//
//	type contactData struct {
//		formutil.Base
//		Name  string
//		Email string
//	}
//
//	data := contactData{Base: formutil.NewBase(r, "Contact Us", "/")}
//	data.SetError("Please fill in all required fields.")
//	templates.Render(w, r, "contact/form", data)
package formutil

import (
	"html/template"
	"net/http"

	"github.com/dalemusser/ecorecycle/internal/app/system/inputval"
	"github.com/dalemusser/ecorecycle/internal/app/system/viewdata"
)

// Base embeds viewdata.BaseVM and adds the form's error state.
type Base struct {
	viewdata.BaseVM
	Error       template.HTML
	FieldErrors map[string]string // field name -> message
}

// NewBase creates a Base for a form page.
func NewBase(r *http.Request, title, backDefault string) Base {
	return Base{BaseVM: viewdata.NewBaseVM(r, title, backDefault)}
}

// SetError sets the message shown above the form. msg is escaped.
func (b *Base) SetError(msg string) {
	b.Error = template.HTML(template.HTMLEscapeString(msg))
}

// SetValidation copies a validation result onto the form: the first
// message becomes the form error and each field gets its own message.
func (b *Base) SetValidation(res *inputval.Result) {
	if res == nil || !res.HasErrors() {
		return
	}
	b.SetError(res.First())
	b.FieldErrors = make(map[string]string, len(res.Errors))
	for _, fe := range res.Errors {
		if _, seen := b.FieldErrors[fe.Field]; !seen {
			b.FieldErrors[fe.Field] = fe.Message
		}
	}
}

// FieldError returns the message for one field, or "".
func (b Base) FieldError(field string) string {
	return b.FieldErrors[field]
}

// HasError reports whether any error is set.
func (b Base) HasError() bool {
	return b.Error != "" || len(b.FieldErrors) > 0
}
