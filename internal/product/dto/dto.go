package dto

import (
	"github.com/fekuna/omnipos-variation-service/internal/model"
	"github.com/fekuna/omnipos-variation-service/internal/variation"
)

type SaveTypesResponse struct {
	Product          *model.Product  `json:"product"`
	Draft            variation.Draft `json:"draft"`
	CombinationCount int             `json:"combination_count"`
}
