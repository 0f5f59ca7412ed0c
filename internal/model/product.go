package model

// Product is a structured record scraped or imported from a marketplace
// listing. The classification pipeline consumes Description and ImageURL;
// the landed-cost pipeline uses the commercial fields.
type Product struct {
	URL         string
	Title       string
	Description string
	ImageURL    string
	Currency    string
	UnitPrice   float64
	Units       int
	WeightKG    float64
	VolumeM3    float64
}

// TotalValue returns the commercial value of the full lot.
func (p *Product) TotalValue() float64 {
	units := p.Units
	if units <= 0 {
		units = 1
	}
	return p.UnitPrice * float64(units)
}
