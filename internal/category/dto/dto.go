package dto

type CategoryFilters struct {
	MerchantID string
	IsActive   *bool
}
