// internal/domain/models/site.go
package models

// DefaultSiteName is shown in the header, footer and emails when no
// site_name is configured.
const DefaultSiteName = "EcoRecycle"

// DefaultFooterHTML is the footer shown when footer_html is not configured.
const DefaultFooterHTML = "Recycling electronics responsibly."

// ContactSubjects are the subjects offered on the contact form.
var ContactSubjects = []Option{
	{Value: "general inquiry", Label: "General Inquiry"},
	{Value: "pickup information", Label: "Pickup Information"},
	{Value: "donation question", Label: "Donation Question"},
	{Value: "partnership opportunity", Label: "Partnership Opportunity"},
	{Value: "feedback", Label: "Feedback"},
	{Value: "other", Label: "Other"},
}

// IsValidContactSubject checks if a value is one of ContactSubjects.
func IsValidContactSubject(value string) bool {
	return optionLabel(ContactSubjects, value) != ""
}
