package domain

// OrderRecord is one line item of a placed order. Several records share an OrderID.
type OrderRecord struct {
	OrderID     string
	ProductID   int64
	Name        string
	Description string
	Quantity    int
	UnitPrice   Money
	LineTotal   Money
	ImageURL    *string
}

type OrderStats struct {
	TotalOrders   int
	TotalSpending Money
}

type OrderHistory struct {
	Owner   string
	Role    string
	Records []OrderRecord
}

type SortBy string

const (
	SortByDate   SortBy = "date"
	SortByAmount SortBy = "amount"
	SortByName   SortBy = "name"
)

func (s SortBy) Valid() bool {
	return s == SortByDate || s == SortByAmount || s == SortByName
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func (s SortOrder) Valid() bool {
	return s == SortAsc || s == SortDesc
}

type OrderFilter struct {
	SearchTerm string
	SortBy     SortBy
	SortOrder  SortOrder
}

// DefaultOrderFilter shows every order, newest first.
func DefaultOrderFilter() OrderFilter {
	return OrderFilter{
		SearchTerm: "",
		SortBy:     SortByDate,
		SortOrder:  SortDesc,
	}
}
