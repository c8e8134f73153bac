package model

import "github.com/shopspring/decimal"

// Product is a catalog item available in the commissary.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Weight      decimal.Decimal
	Stock       int
	CategoryID  *int64
	Trending    bool
}

// Recipient is the incarcerated person an order is placed for.
type Recipient struct {
	ID                   int64
	FullName             string
	IdentificationNumber string
}

// Contact is an outside person allowed to order on behalf of recipients.
type Contact struct {
	ID       int64
	FullName string
	Phone    string
	Approved bool
}
