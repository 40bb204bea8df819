package dataset

import (
	"time"

	"github.com/cockroachdb/apd/v3"
)

// Date is a calendar day without a time zone. Fact rows and the date lookup
// are keyed by it.
type Date struct {
	Year  int
	Month int // 1-12
	Day   int // 1-31
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, nil
}

// String renders YYYY-MM-DD.
func (d Date) String() string {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}

// Fact is one sales observation: a store/date/product combination with its
// measures. Immutable once loaded; no component mutates facts.
type Fact struct {
	SaleDate        Date
	StoreID         string
	ProductID       string
	Category        string
	InventoryLevel  int64
	UnitsSold       int64
	UnitsOrdered    int64
	Price           *apd.Decimal // non-negative
	Discount        *apd.Decimal // in [0, 100]
	Weather         string
	Promotion       string // "" means no promotion
	Demand          int64
	CompetitorPrice *apd.Decimal // nil means unknown
}

// HasPromotion reports whether the row references a promotion.
func (f *Fact) HasPromotion() bool {
	return f.Promotion != ""
}

// StoreInfo is the store dimension: natural key StoreID maps to a region.
type StoreInfo struct {
	StoreID string
	Region  string
}

// DateInfo is the date dimension: seasonality label plus the epidemic flag.
type DateInfo struct {
	Date        Date
	Seasonality string
	Epidemic    bool
}

// PromotionInfo is the promotion dimension.
type PromotionInfo struct {
	PromotionID string
	Name        string
}

// Seasons is the fixed set of valid seasonality labels.
var Seasons = map[string]bool{
	"Spring": true,
	"Summer": true,
	"Autumn": true,
	"Winter": true,
}

// Weathers is the known-weather set. A fact row whose weather is outside this
// set fails validation.
var Weathers = map[string]bool{
	"Sunny":  true,
	"Rainy":  true,
	"Cloudy": true,
	"Snowy":  true,
}

// Dataset is the loaded star schema: the ordered fact rows plus the three
// dimension lookups. Read-only after load; safe for concurrent reports
// without locking.
type Dataset struct {
	Facts      []Fact
	Stores     map[string]StoreInfo
	Dates      map[Date]DateInfo
	Promotions map[string]PromotionInfo
}

// NewDataset creates an empty dataset with initialized lookups.
func NewDataset() *Dataset {
	return &Dataset{
		Stores:     make(map[string]StoreInfo),
		Dates:      make(map[Date]DateInfo),
		Promotions: make(map[string]PromotionInfo),
	}
}

// Season resolves a sale date to its seasonality label. The loader guarantees
// the lookup resolves, so a miss here is a programming error.
func (ds *Dataset) Season(d Date) string {
	return ds.Dates[d].Seasonality
}

// Region resolves a store id to its region.
func (ds *Dataset) Region(storeID string) string {
	return ds.Stores[storeID].Region
}

// PromotionName resolves a promotion id to its display name, or "" for the
// no-promotion sentinel.
func (ds *Dataset) PromotionName(id string) string {
	if id == "" {
		return ""
	}
	return ds.Promotions[id].Name
}
