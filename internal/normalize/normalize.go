// Package normalize validates extracted items and brings their free-text
// fields into canonical shape before they reach the sink.
package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/cadri-extractor/constants"
	"github.com/joseph-ayodele/cadri-extractor/internal/common"
	"github.com/joseph-ayodele/cadri-extractor/internal/entity"
	"github.com/joseph-ayodele/cadri-extractor/internal/patterns"
	"github.com/joseph-ayodele/cadri-extractor/internal/utils"
)

// packagingCode is the whole-string form of patterns.PackagingCode.
var packagingCode = regexp.MustCompile(`^(?:` + patterns.PackagingCode.String() + `)$`)

// Drop is an item rejected by the normalizer.
type Drop struct {
	Item   entity.WasteItem
	Reason string
}

// Normalize returns the accepted items, in input order, and the dropped ones.
// Rejecting one item never affects its siblings.
func Normalize(items []entity.WasteItem) (valid []entity.WasteItem, dropped []Drop) {
	for _, it := range items {
		out, err := Item(it)
		if err != nil {
			dropped = append(dropped, Drop{Item: it, Reason: common.ErrorCode(err)})
			continue
		}
		valid = append(valid, out)
	}
	return valid, dropped
}

// Item normalizes a single item. The only rejection is a malformed code.
func Item(it entity.WasteItem) (entity.WasteItem, error) {
	if err := code(&it); err != nil {
		return it, err
	}

	it.Description = bounded(it.Description)
	it.Origin = collapsed(it.Origin)
	it.Composition = collapsed(it.Composition)
	it.Method = collapsed(it.Method)
	it.Appearance = collapsed(it.Appearance)
	it.DestinationDescription = collapsed(it.DestinationDescription)

	if it.PhysicalState != nil {
		it.PhysicalState = utils.NilIfEmpty(strings.ToUpper(*it.PhysicalState))
	}
	if it.Unit != nil {
		u, _ := constants.CanonicalUnit(*it.Unit)
		it.Unit = utils.NilIfEmpty(u)
	}
	if it.Quantity != nil {
		it.Quantity = utils.NilIfEmpty(*it.Quantity)
	}
	if it.RawFragment != nil {
		it.RawFragment = utils.NilIfEmpty(utils.TruncateRunes(utils.CollapseSpaces(*it.RawFragment), patterns.MaxFragment, "..."))
	}
	it.PackagingCodes, it.PackagingDescriptions = packaging(it.PackagingCodes, it.PackagingDescriptions)
	return it, nil
}

// packaging uppercases the codes, keeps the E-codes once each in first-seen
// order and carries the aligned descriptions along. The inputs are not
// modified.
func packaging(codes, descs []string) ([]string, []string) {
	if len(codes) == 0 {
		return nil, nil
	}
	outCodes := make([]string, 0, len(codes))
	outDescs := make([]string, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for i, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if !packagingCode.MatchString(c) || seen[c] {
			continue
		}
		seen[c] = true
		outCodes = append(outCodes, c)
		d := ""
		if i < len(descs) {
			d = utils.CollapseSpaces(descs[i])
		}
		outDescs = append(outDescs, d)
	}
	if len(outCodes) == 0 {
		return nil, nil
	}
	return outCodes, outDescs
}

// code accepts the current shape in ResidueCode and the dotted legacy shape,
// which is moved to LegacyCode.
func code(it *entity.WasteItem) error {
	raw := strings.TrimSpace(utils.StrOrEmpty(it.ResidueCode))
	if raw == "" {
		raw = strings.TrimSpace(utils.StrOrEmpty(it.LegacyCode))
	}
	switch {
	case patterns.ResidueCode.MatchString(raw):
		it.ResidueCode = utils.Ptr(raw)
	case patterns.LegacyCode.MatchString(raw):
		it.ResidueCode = nil
		it.LegacyCode = utils.Ptr(raw)
	default:
		return common.NewAppError(common.CodeMalformedCode, "unrecognized residue code "+strconv.Quote(raw), common.ErrValidation)
	}
	return nil
}

// QuantityValue parses a normalized quantity. ok is false when the string is
// not a decimal; the string itself is still kept on the item.
func QuantityValue(it entity.WasteItem) (float64, bool) {
	if it.Quantity == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(*it.Quantity, 64)
	return v, err == nil
}

func collapsed(p *string) *string {
	if p == nil {
		return nil
	}
	return utils.NilIfEmpty(utils.CollapseSpaces(*p))
}

func bounded(p *string) *string {
	if p == nil {
		return nil
	}
	return utils.NilIfEmpty(utils.TruncateRunes(utils.CollapseSpaces(*p), patterns.MaxFragment, ""))
}
