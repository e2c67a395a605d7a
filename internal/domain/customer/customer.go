package customer

// ContactInfo carries the channels a customer can be reached on.
// A notifiable customer has at least one of them set.
type ContactInfo struct {
	Email string
	Phone string
}

// HasChannel reports whether at least one contact channel is present.
func (c ContactInfo) HasChannel() bool {
	return c.Email != "" || c.Phone != ""
}

// CustomerData identifies the paying customer for a single transaction.
// CustomerID, when set, links to a pre-existing record on the payment
// backend. Instances are built by the caller and not mutated afterwards.
type CustomerData struct {
	Name       string
	Contact    *ContactInfo
	CustomerID string
}

// Email returns the customer's email address, or "" when none is known.
func (c CustomerData) Email() string {
	if c.Contact == nil {
		return ""
	}
	return c.Contact.Email
}

// Phone returns the customer's phone number, or "" when none is known.
func (c CustomerData) Phone() string {
	if c.Contact == nil {
		return ""
	}
	return c.Contact.Phone
}
