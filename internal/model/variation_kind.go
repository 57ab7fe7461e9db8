package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// VariationKind controls how a variation type is rendered and whether its
// options may carry images.
type VariationKind int

const (
	KindDropdown VariationKind = iota + 1
	KindRadio
	KindImageSwatch
)

func ParseVariationKind(s string) (VariationKind, error) {
	switch s {
	case "dropdown", "select":
		return KindDropdown, nil
	case "radio":
		return KindRadio, nil
	case "image", "image_swatch":
		return KindImageSwatch, nil
	}
	return 0, fmt.Errorf("unknown variation kind %q", s)
}

func (k VariationKind) String() string {
	switch k {
	case KindDropdown:
		return "dropdown"
	case KindRadio:
		return "radio"
	case KindImageSwatch:
		return "image"
	}
	return fmt.Sprintf("VariationKind(%d)", int(k))
}

func (k VariationKind) Valid() bool {
	switch k {
	case KindDropdown, KindRadio, KindImageSwatch:
		return true
	}
	return false
}

func (k VariationKind) SupportsImages() bool {
	switch k {
	case KindImageSwatch:
		return true
	case KindDropdown, KindRadio:
		return false
	}
	return false
}

func (k VariationKind) MarshalJSON() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("marshal invalid variation kind %d", int(k))
	}
	return json.Marshal(k.String())
}

func (k *VariationKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseVariationKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func (k VariationKind) Value() (driver.Value, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("store invalid variation kind %d", int(k))
	}
	return k.String(), nil
}

func (k *VariationKind) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("scan variation kind from %T", src)
	}
	parsed, err := ParseVariationKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
