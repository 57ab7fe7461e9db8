package variation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/fekuna/omnipos-variation-service/internal/apperror"
	"github.com/fekuna/omnipos-variation-service/internal/model"
)

// EditableOption is an option as edited in the admin form. ID is nil until
// the option has been saved.
type EditableOption struct {
	ID     *int64   `json:"id,omitempty"`
	Name   string   `json:"name"`
	Images []string `json:"images,omitempty"`
}

type EditableVariationType struct {
	ID      *int64              `json:"id,omitempty"`
	Name    string              `json:"name"`
	Kind    model.VariationKind `json:"kind"`
	Options []EditableOption    `json:"options"`
}

// Draft is the admin's in-progress type/option edit. Every reducer returns a
// new Draft and leaves the receiver untouched; indexes out of range are no-ops.
type Draft struct {
	Types []EditableVariationType `json:"types"`
}

// DraftFromTypes seeds a draft from persisted types.
func DraftFromTypes(types []model.VariationType) Draft {
	d := Draft{Types: make([]EditableVariationType, len(types))}
	for i, t := range types {
		id := t.ID
		et := EditableVariationType{ID: &id, Name: t.Name, Kind: t.Kind, Options: make([]EditableOption, len(t.Options))}
		for j, o := range t.Options {
			oid := o.ID
			et.Options[j] = EditableOption{ID: &oid, Name: o.Name, Images: append([]string(nil), o.Images...)}
		}
		d.Types[i] = et
	}
	return d
}

func (d Draft) clone() Draft {
	out := Draft{Types: make([]EditableVariationType, len(d.Types))}
	for i, t := range d.Types {
		t.Options = slices.Clone(t.Options)
		for j := range t.Options {
			t.Options[j].Images = slices.Clone(t.Options[j].Images)
		}
		out.Types[i] = t
	}
	return out
}

func (d Draft) hasType(ti int) bool { return ti >= 0 && ti < len(d.Types) }

func (d Draft) hasOption(ti, oi int) bool {
	return d.hasType(ti) && oi >= 0 && oi < len(d.Types[ti].Options)
}

func (d Draft) AddType(name string, kind model.VariationKind) Draft {
	out := d.clone()
	out.Types = append(out.Types, EditableVariationType{Name: name, Kind: kind})
	return out
}

func (d Draft) RemoveType(ti int) Draft {
	if !d.hasType(ti) {
		return d
	}
	out := d.clone()
	out.Types = slices.Delete(out.Types, ti, ti+1)
	return out
}

func (d Draft) RenameType(ti int, name string) Draft {
	if !d.hasType(ti) {
		return d
	}
	out := d.clone()
	out.Types[ti].Name = name
	return out
}

// SetKind changes the type's kind. Images already attached are kept in the
// draft and dropped by Clean if the new kind does not show them.
func (d Draft) SetKind(ti int, kind model.VariationKind) Draft {
	if !d.hasType(ti) {
		return d
	}
	out := d.clone()
	out.Types[ti].Kind = kind
	return out
}

func (d Draft) AddOption(ti int, name string) Draft {
	if !d.hasType(ti) {
		return d
	}
	out := d.clone()
	out.Types[ti].Options = append(out.Types[ti].Options, EditableOption{Name: name})
	return out
}

func (d Draft) RemoveOption(ti, oi int) Draft {
	if !d.hasOption(ti, oi) {
		return d
	}
	out := d.clone()
	out.Types[ti].Options = slices.Delete(out.Types[ti].Options, oi, oi+1)
	return out
}

func (d Draft) RenameOption(ti, oi int, name string) Draft {
	if !d.hasOption(ti, oi) {
		return d
	}
	out := d.clone()
	out.Types[ti].Options[oi].Name = name
	return out
}

func (d Draft) AddOptionImage(ti, oi int, ref string) Draft {
	if !d.hasOption(ti, oi) {
		return d
	}
	out := d.clone()
	out.Types[ti].Options[oi].Images = append(out.Types[ti].Options[oi].Images, ref)
	return out
}

func (d Draft) RemoveOptionImage(ti, oi, ii int) Draft {
	if !d.hasOption(ti, oi) {
		return d
	}
	if ii < 0 || ii >= len(d.Types[ti].Options[oi].Images) {
		return d
	}
	out := d.clone()
	out.Types[ti].Options[oi].Images = slices.Delete(out.Types[ti].Options[oi].Images, ii, ii+1)
	return out
}

// TypeInput is the cleaned payload persisted by the product repository.
type TypeInput struct {
	ID      *int64
	Name    string
	Kind    model.VariationKind
	Options []OptionInput
}

type OptionInput struct {
	ID     *int64
	Name   string
	Images []string
}

// Clean derives the submit payload from the draft. Names are trimmed, blank
// options are dropped and images are dropped for kinds that do not show them.
// A type left without options is kept; it simply yields no combinations.
func (d Draft) Clean() ([]TypeInput, error) {
	verr := &apperror.ValidationError{}
	out := make([]TypeInput, 0, len(d.Types))

	for ti, t := range d.Types {
		field := fmt.Sprintf("types[%d]", ti)
		name := strings.TrimSpace(t.Name)
		if name == "" {
			verr.Add(field+".name", "validation.required", map[string]any{"Field": "name"})
		}
		if !t.Kind.Valid() {
			verr.Add(field+".kind", "validation.invalid_kind", map[string]any{"Value": t.Kind.String()})
		}

		in := TypeInput{ID: t.ID, Name: name, Kind: t.Kind, Options: make([]OptionInput, 0, len(t.Options))}
		seen := make(map[string]bool, len(t.Options))
		for oi, o := range t.Options {
			oname := strings.TrimSpace(o.Name)
			if oname == "" {
				continue
			}
			fold := strings.ToLower(oname)
			if seen[fold] {
				verr.Add(fmt.Sprintf("%s.options[%d].name", field, oi), "validation.duplicate_option",
					map[string]any{"Value": oname})
				continue
			}
			seen[fold] = true

			var images []string
			if t.Kind.SupportsImages() {
				for _, ref := range o.Images {
					if ref = strings.TrimSpace(ref); ref != "" {
						images = append(images, ref)
					}
				}
			}
			in.Options = append(in.Options, OptionInput{ID: o.ID, Name: oname, Images: images})
		}
		out = append(out, in)
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return out, nil
}
