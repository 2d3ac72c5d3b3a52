package invoice

import "time"

// DuplicateInput builds the create payload for a clone of src: same customer,
// lines, tax and discount, but dated now with the due date cleared. The clone
// gets a fresh number and starts over as a draft via the normal create path.
func DuplicateInput(src Invoice, now time.Time) CreateInput {
	in := CreateInput{
		Kind:        src.Kind,
		Customer:    src.Customer,
		TaxEnabled:  src.TaxEnabled,
		TaxPercent:  src.TaxPercent,
		Discount:    src.Discount,
		InvoiceDate: DateOf(now),
		Notes:       src.Notes,
	}
	for _, item := range src.Services {
		in.Services = append(in.Services, ServiceInput{
			Description: item.Description,
			Quantity:    item.Quantity,
			Rate:        item.Rate,
		})
	}
	return in
}
