package panel

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/evcraddock/wealth-map/internal/dataset"
)

// Placeholder texts for fields with no data.
const (
	Unknown      = "Unknown"
	NotAvailable = "Information not available"
	NoHistory    = "No historical data available"
)

// TimelineEntry is one valuation in the details history.
type TimelineEntry struct {
	Year  int    `json:"year"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// PropertyDetails holds the labeled fields of the details panel.
type PropertyDetails struct {
	Address           string `json:"address"`
	PropertyType      string `json:"propertyType"`
	YearBuilt         string `json:"yearBuilt"`
	SquareFootage     string `json:"squareFootage"`
	LotSize           string `json:"lotSize"`
	Bedrooms          string `json:"bedrooms"`
	Bathrooms         string `json:"bathrooms"`
	CurrentOwner      string `json:"currentOwner"`
	OwnerSince        string `json:"ownerSince"`
	OwnerType         string `json:"ownerType"`
	MailingAddress    string `json:"mailingAddress"`
	RelatedProperties string `json:"relatedProperties"`
	CurrentValue      string `json:"currentValue"`
	LastSalePrice     string `json:"lastSalePrice"`
	LastSaleDate      string `json:"lastSaleDate"`
	PropertyTaxes     string `json:"propertyTaxes"`
	TaxAssessment     string `json:"taxAssessment"`
	MortgageInfo      string `json:"mortgageInfo"`

	History        []TimelineEntry `json:"history,omitempty"`
	HistoryMessage string          `json:"historyMessage,omitempty"`
}

// BuildDetails fills the details fields for a property held by owner.
func BuildDetails(p dataset.Property, owner string) PropertyDetails {
	d := PropertyDetails{
		Address:           p.Address,
		PropertyType:      "Residential",
		YearBuilt:         Unknown,
		SquareFootage:     Unknown,
		LotSize:           Unknown,
		Bedrooms:          Unknown,
		Bathrooms:         Unknown,
		CurrentOwner:      owner,
		OwnerSince:        Unknown,
		OwnerType:         "Individual",
		MailingAddress:    "Same as property",
		RelatedProperties: NotAvailable,
		CurrentValue:      Unknown,
		LastSalePrice:     Unknown,
		LastSaleDate:      Unknown,
		PropertyTaxes:     NotAvailable,
		TaxAssessment:     NotAvailable,
		MortgageInfo:      NotAvailable,
	}

	if p.SquareFootage != nil && *p.SquareFootage != 0 {
		d.SquareFootage = SquareFeet(*p.SquareFootage)
	}
	if p.LotSize != nil && *p.LotSize != "" {
		d.LotSize = *p.LotSize
	}
	if p.Bedrooms != nil && *p.Bedrooms != 0 {
		d.Bedrooms = strconv.FormatFloat(*p.Bedrooms, 'f', -1, 64)
	}
	if p.Bathrooms != nil && *p.Bathrooms != 0 {
		d.Bathrooms = strconv.FormatFloat(*p.Bathrooms, 'f', -1, 64)
	}
	if p.Value != "" {
		d.CurrentValue = p.Value
	}

	if len(p.History) == 0 {
		d.HistoryMessage = NoHistory
		return d
	}

	first := p.History[0]
	d.YearBuilt = strconv.Itoa(first.Year)
	d.OwnerSince = fmt.Sprintf("Since %d", first.Year)
	d.LastSalePrice = first.Value
	d.LastSaleDate = strconv.Itoa(first.Year)
	for _, h := range p.History {
		d.History = append(d.History, TimelineEntry{
			Year:  h.Year,
			Title: "Property Valuation",
			Text:  "Valued at " + h.Value,
		})
	}
	return d
}

// SquareFeet formats an area such as "12,500 sq ft".
func SquareFeet(n int64) string {
	return groupThousands(n) + " sq ft"
}

// groupThousands formats n with comma separators.
func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if n < 0 {
		neg = true
		s = s[1:]
	}
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

// Details is the property details panel. It is safe for concurrent use.
type Details struct {
	mu      sync.Mutex
	open    bool
	details PropertyDetails
}

// NewDetails creates a closed details panel.
func NewDetails() *Details {
	return &Details{}
}

// Open shows the panel with the fields for p.
func (d *Details) Open(p dataset.Property, owner string) PropertyDetails {
	pd := BuildDetails(p, owner)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.details = pd
	d.open = true
	return pd
}

// Close hides the panel. The last content is kept.
func (d *Details) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = false
}

// IsOpen reports whether the panel is visible.
func (d *Details) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// Current returns the panel content and whether it is open.
func (d *Details) Current() (PropertyDetails, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	pd := d.details
	pd.History = append([]TimelineEntry(nil), d.details.History...)
	return pd, d.open
}
